package submission

import (
	"context"
	"errors"
	"time"
)

// Status — статус рассмотрения заявки.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Profile содержит поля анкеты, которые заполняет студент.
type Profile struct {
	FullName          string `bson:"full_name"`
	Group             string `bson:"group"`
	Email             string `bson:"email"`
	BirthDate         string `bson:"birth_date"`
	Books             string `bson:"books"`
	LikedRecentMovie  string `bson:"liked_recent_movie"`
	AboutYou          string `bson:"about_you"`
	AfterUniversity   string `bson:"after_university"`
	RedDiploma        string `bson:"red_diploma"`
	ScienceInterest   string `bson:"science_interest"`
	ThesisTopic       string `bson:"thesis_topic"`
	ThesisDescription string `bson:"thesis_description"`
	AnalogsProsCons   string `bson:"analogs_pros_cons"`
	PlannedFeatures   string `bson:"planned_features"`
	TechStack         string `bson:"tech_stack"`
}

// Submission — заявка студента на руководство дипломной работой.
// StudentAnswer остается nil, пока студент не дал булев ответ; после
// этого редактирование анкеты закрыто навсегда.
type Submission struct {
	ID        string `bson:"-"`
	StudentID int64  `bson:"student_id"`
	Profile   `bson:",inline"`
	Status    Status `bson:"status"`

	AdminComment      string `bson:"admin_comment"`
	AllowStudentReply bool   `bson:"allow_student_reply"`
	AdminQuestion     string `bson:"admin_question"`
	StudentTextAnswer string `bson:"student_text_answer"`
	StudentAnswer     *bool  `bson:"student_answer,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// CanEdit сообщает, может ли студент менять поля анкеты.
func (s *Submission) CanEdit() bool {
	return s.StudentAnswer == nil
}

// Filter задает условия выборки списка заявок. Пустые поля не применяются.
type Filter struct {
	Status Status
	Group  string
}

// ErrNotFound сообщает об отсутствии заявки.
var ErrNotFound = errors.New("submission not found")

// Repository — хранилище заявок.
type Repository interface {
	Create(ctx context.Context, sub Submission) (*Submission, error)
	GetByID(ctx context.Context, id string) (*Submission, error)
	GetByStudent(ctx context.Context, studentID int64) (*Submission, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Submission, int64, error)
	UpdateProfile(ctx context.Context, id string, profile Profile) (*Submission, error)
	SetDecision(ctx context.Context, id string, status Status, comment string) (*Submission, error)
	SetComment(ctx context.Context, id string, comment string) (*Submission, error)
	SetAllowReply(ctx context.Context, id string, allow bool) (*Submission, error)
	SetQuestion(ctx context.Context, id string, question string) (*Submission, error)
	SetTextAnswer(ctx context.Context, id string, answer string) (*Submission, error)
	SetBoolAnswer(ctx context.Context, id string, answer bool) (*Submission, error)
	Delete(ctx context.Context, id string) error
}
