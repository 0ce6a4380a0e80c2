package repository

import (
	"edu_translator_backend/internal/model"
)

type SubmissionRepository struct {
	store *RecordStore
}

func NewSubmissionRepository(store *RecordStore) *SubmissionRepository {
	return &SubmissionRepository{store: store}
}

func (r *SubmissionRepository) Create(s *model.Submission) error {
	return r.store.Append(model.KindSubmissions, s.ToRow())
}

func (r *SubmissionRepository) FindAll() ([]model.Submission, error) {
	rows, err := r.store.ReadAll(model.KindSubmissions)
	if err != nil {
		return nil, err
	}
	submissions := make([]model.Submission, 0, len(rows))
	for _, row := range rows {
		submissions = append(submissions, model.SubmissionFromRow(row))
	}
	return submissions, nil
}

func (r *SubmissionRepository) FindByCode(code string) ([]model.Submission, error) {
	all, err := r.FindAll()
	if err != nil {
		return nil, err
	}
	result := make([]model.Submission, 0)
	for _, s := range all {
		if s.Code == code {
			result = append(result, s)
		}
	}
	return result, nil
}

// RawCSV 原始 CSV，供教师下载
func (r *SubmissionRepository) RawCSV() ([]byte, bool, error) {
	return r.store.ReadFile(model.KindSubmissions)
}
