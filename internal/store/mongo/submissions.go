package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"thesis_bot/internal/domain/submission"
)

// SubmissionRepository хранит заявки в коллекции MongoDB. Документы в
// хранилище бесструктурные; bson-теги модели служат границей валидации
// при чтении.
type SubmissionRepository struct {
	coll *mongo.Collection
}

// NewSubmissionRepository создает репозиторий заявок.
func NewSubmissionRepository(db *mongo.Database, collection string) *SubmissionRepository {
	return &SubmissionRepository{coll: db.Collection(collection)}
}

type submissionDoc struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	submission.Submission `bson:",inline"`
}

func (d submissionDoc) toDomain() *submission.Submission {
	sub := d.Submission
	sub.ID = d.ID.Hex()
	return &sub
}

func (r *SubmissionRepository) Create(ctx context.Context, sub submission.Submission) (*submission.Submission, error) {
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.Status == "" {
		sub.Status = submission.StatusPending
	}
	res, err := r.coll.InsertOne(ctx, submissionDoc{Submission: sub})
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("create submission: unexpected inserted id type")
	}
	sub.ID = oid.Hex()
	return &sub, nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*submission.Submission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, submission.ErrNotFound
	}
	var doc submissionDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, submission.ErrNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SubmissionRepository) GetByStudent(ctx context.Context, studentID int64) (*submission.Submission, error) {
	var doc submissionDoc
	if err := r.coll.FindOne(ctx, bson.M{"student_id": studentID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, submission.ErrNotFound
		}
		return nil, fmt.Errorf("get submission by student: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SubmissionRepository) List(ctx context.Context, filter submission.Filter, limit, offset int) ([]submission.Submission, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Group != "" {
		query["group"] = filter.Group
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer cursor.Close(ctx)

	var items []submission.Submission
	for cursor.Next(ctx) {
		var doc submissionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode submission: %w", err)
		}
		items = append(items, *doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	return items, total, nil
}

func (r *SubmissionRepository) UpdateProfile(ctx context.Context, id string, profile submission.Profile) (*submission.Submission, error) {
	return r.patch(ctx, id, bson.M{
		"full_name":          profile.FullName,
		"group":              profile.Group,
		"email":              profile.Email,
		"birth_date":         profile.BirthDate,
		"books":              profile.Books,
		"liked_recent_movie": profile.LikedRecentMovie,
		"about_you":          profile.AboutYou,
		"after_university":   profile.AfterUniversity,
		"red_diploma":        profile.RedDiploma,
		"science_interest":   profile.ScienceInterest,
		"thesis_topic":       profile.ThesisTopic,
		"thesis_description": profile.ThesisDescription,
		"analogs_pros_cons":  profile.AnalogsProsCons,
		"planned_features":   profile.PlannedFeatures,
		"tech_stack":         profile.TechStack,
	})
}

func (r *SubmissionRepository) SetDecision(ctx context.Context, id string, status submission.Status, comment string) (*submission.Submission, error) {
	return r.patch(ctx, id, bson.M{"status": status, "admin_comment": comment})
}

func (r *SubmissionRepository) SetComment(ctx context.Context, id string, comment string) (*submission.Submission, error) {
	return r.patch(ctx, id, bson.M{"admin_comment": comment})
}

func (r *SubmissionRepository) SetAllowReply(ctx context.Context, id string, allow bool) (*submission.Submission, error) {
	return r.patch(ctx, id, bson.M{"allow_student_reply": allow})
}

func (r *SubmissionRepository) SetQuestion(ctx context.Context, id string, question string) (*submission.Submission, error) {
	return r.patch(ctx, id, bson.M{"admin_question": question})
}

// SetTextAnswer сохраняет текстовый ответ и одновременно закрывает
// одноразовое разрешение на ответ.
func (r *SubmissionRepository) SetTextAnswer(ctx context.Context, id string, answer string) (*submission.Submission, error) {
	return r.patch(ctx, id, bson.M{"student_text_answer": answer, "allow_student_reply": false})
}

// SetBoolAnswer сохраняет булев ответ и закрывает разрешение на ответ.
func (r *SubmissionRepository) SetBoolAnswer(ctx context.Context, id string, answer bool) (*submission.Submission, error) {
	return r.patch(ctx, id, bson.M{"student_answer": answer, "allow_student_reply": false})
}

func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return submission.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if res.DeletedCount == 0 {
		return submission.ErrNotFound
	}
	return nil
}

func (r *SubmissionRepository) patch(ctx context.Context, id string, fields bson.M) (*submission.Submission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, submission.ErrNotFound
	}
	fields["updated_at"] = time.Now().UTC()
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, submission.ErrNotFound
	}
	return r.GetByID(ctx, id)
}
