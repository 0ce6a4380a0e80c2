package repository

import (
	"edu_translator_backend/internal/model"
)

type AssignmentRepository struct {
	store *RecordStore
}

func NewAssignmentRepository(store *RecordStore) *AssignmentRepository {
	return &AssignmentRepository{store: store}
}

func (r *AssignmentRepository) Create(a *model.Assignment) error {
	return r.store.Append(model.KindAssignments, a.ToRow())
}

// FindAll 按写入顺序返回全部作业
func (r *AssignmentRepository) FindAll() ([]model.Assignment, error) {
	rows, err := r.store.ReadAll(model.KindAssignments)
	if err != nil {
		return nil, err
	}
	assignments := make([]model.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, model.AssignmentFromRow(row))
	}
	return assignments, nil
}

// FindByGroup 组号逐字节精确匹配，不做大小写或空白归一化
func (r *AssignmentRepository) FindByGroup(group string) ([]model.Assignment, error) {
	all, err := r.FindAll()
	if err != nil {
		return nil, err
	}
	result := make([]model.Assignment, 0)
	for _, a := range all {
		if a.Group == group {
			result = append(result, a)
		}
	}
	return result, nil
}

// Recent 最近 n 条
func (r *AssignmentRepository) Recent(n int) ([]model.Assignment, error) {
	all, err := r.FindAll()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}
