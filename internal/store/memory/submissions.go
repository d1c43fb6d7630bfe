package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"thesis_bot/internal/domain/submission"
)

// SubmissionStore хранит заявки в памяти. Используется в тестах и при
// разработке без MongoDB; порядок списка — порядок вставки.
type SubmissionStore struct {
	mu     sync.Mutex
	nextID int
	order  []string
	items  map[string]submission.Submission
}

// NewSubmissionStore создает хранилище заявок в памяти.
func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		nextID: 1,
		items:  make(map[string]submission.Submission),
	}
}

func (s *SubmissionStore) Create(_ context.Context, sub submission.Submission) (*submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	sub.ID = "sub-" + strconv.Itoa(s.nextID)
	s.nextID++
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.Status == "" {
		sub.Status = submission.StatusPending
	}
	s.items[sub.ID] = sub
	s.order = append(s.order, sub.ID)
	copied := sub
	return &copied, nil
}

func (s *SubmissionStore) GetByID(_ context.Context, id string) (*submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.items[id]
	if !ok {
		return nil, submission.ErrNotFound
	}
	copied := sub
	return &copied, nil
}

func (s *SubmissionStore) GetByStudent(_ context.Context, studentID int64) (*submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		sub, ok := s.items[id]
		if ok && sub.StudentID == studentID {
			copied := sub
			return &copied, nil
		}
	}
	return nil, submission.ErrNotFound
}

func (s *SubmissionStore) List(_ context.Context, filter submission.Filter, limit, offset int) ([]submission.Submission, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []submission.Submission
	for _, id := range s.order {
		sub, ok := s.items[id]
		if !ok {
			continue
		}
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		if filter.Group != "" && sub.Group != filter.Group {
			continue
		}
		matched = append(matched, sub)
	}
	total := int64(len(matched))
	if offset > 0 {
		if offset >= len(matched) {
			return nil, total, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (s *SubmissionStore) UpdateProfile(_ context.Context, id string, profile submission.Profile) (*submission.Submission, error) {
	return s.patch(id, func(sub *submission.Submission) {
		sub.Profile = profile
	})
}

func (s *SubmissionStore) SetDecision(_ context.Context, id string, status submission.Status, comment string) (*submission.Submission, error) {
	return s.patch(id, func(sub *submission.Submission) {
		sub.Status = status
		sub.AdminComment = comment
	})
}

func (s *SubmissionStore) SetComment(_ context.Context, id string, comment string) (*submission.Submission, error) {
	return s.patch(id, func(sub *submission.Submission) {
		sub.AdminComment = comment
	})
}

func (s *SubmissionStore) SetAllowReply(_ context.Context, id string, allow bool) (*submission.Submission, error) {
	return s.patch(id, func(sub *submission.Submission) {
		sub.AllowStudentReply = allow
	})
}

func (s *SubmissionStore) SetQuestion(_ context.Context, id string, question string) (*submission.Submission, error) {
	return s.patch(id, func(sub *submission.Submission) {
		sub.AdminQuestion = question
	})
}

func (s *SubmissionStore) SetTextAnswer(_ context.Context, id string, answer string) (*submission.Submission, error) {
	return s.patch(id, func(sub *submission.Submission) {
		sub.StudentTextAnswer = answer
		sub.AllowStudentReply = false
	})
}

func (s *SubmissionStore) SetBoolAnswer(_ context.Context, id string, answer bool) (*submission.Submission, error) {
	return s.patch(id, func(sub *submission.Submission) {
		value := answer
		sub.StudentAnswer = &value
		sub.AllowStudentReply = false
	})
}

func (s *SubmissionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return submission.ErrNotFound
	}
	delete(s.items, id)
	for i, stored := range s.order {
		if stored == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *SubmissionStore) patch(id string, apply func(*submission.Submission)) (*submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.items[id]
	if !ok {
		return nil, submission.ErrNotFound
	}
	apply(&sub)
	sub.UpdatedAt = time.Now().UTC()
	s.items[id] = sub
	copied := sub
	return &copied, nil
}
