package repository

import (
	"edu_translator_backend/internal/model"
)

type ReflectionRepository struct {
	store *RecordStore
}

func NewReflectionRepository(store *RecordStore) *ReflectionRepository {
	return &ReflectionRepository{store: store}
}

func (r *ReflectionRepository) Create(reflection *model.Reflection) error {
	return r.store.Append(model.KindReflections, reflection.ToRow())
}

func (r *ReflectionRepository) FindAll() ([]model.Reflection, error) {
	rows, err := r.store.ReadAll(model.KindReflections)
	if err != nil {
		return nil, err
	}
	result := make([]model.Reflection, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.ReflectionFromRow(row))
	}
	return result, nil
}

func (r *ReflectionRepository) FindBySession(sessionID string) ([]model.Reflection, error) {
	all, err := r.FindAll()
	if err != nil {
		return nil, err
	}
	result := make([]model.Reflection, 0)
	for _, ref := range all {
		if ref.Session == sessionID {
			result = append(result, ref)
		}
	}
	return result, nil
}

type GlossaryRepository struct {
	store *RecordStore
}

func NewGlossaryRepository(store *RecordStore) *GlossaryRepository {
	return &GlossaryRepository{store: store}
}

func (r *GlossaryRepository) Create(entry *model.GlossaryEntry) error {
	return r.store.Append(model.KindGlossary, entry.ToRow())
}

func (r *GlossaryRepository) FindAll() ([]model.GlossaryEntry, error) {
	rows, err := r.store.ReadAll(model.KindGlossary)
	if err != nil {
		return nil, err
	}
	result := make([]model.GlossaryEntry, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.GlossaryEntryFromRow(row))
	}
	return result, nil
}

func (r *GlossaryRepository) FindBySession(sessionID string) ([]model.GlossaryEntry, error) {
	all, err := r.FindAll()
	if err != nil {
		return nil, err
	}
	result := make([]model.GlossaryEntry, 0)
	for _, e := range all {
		if e.Session == sessionID {
			result = append(result, e)
		}
	}
	return result, nil
}

type TranslationLogRepository struct {
	store *RecordStore
}

func NewTranslationLogRepository(store *RecordStore) *TranslationLogRepository {
	return &TranslationLogRepository{store: store}
}

func (r *TranslationLogRepository) Create(e *model.TranslationEvent) error {
	return r.store.Append(model.KindTranslations, e.ToRow())
}

func (r *TranslationLogRepository) FindAll() ([]model.TranslationEvent, error) {
	rows, err := r.store.ReadAll(model.KindTranslations)
	if err != nil {
		return nil, err
	}
	result := make([]model.TranslationEvent, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.TranslationEventFromRow(row))
	}
	return result, nil
}
