package service

import (
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/repository"
	"sort"
)

const dashboardRecentLimit = 50

type DashboardService struct {
	submissions *repository.SubmissionRepository
}

func NewDashboardService(submissions *repository.SubmissionRepository) *DashboardService {
	return &DashboardService{submissions: submissions}
}

type CountItem struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type DashboardStats struct {
	Total   int                `json:"total"`
	Recent  []model.Submission `json:"recent"`
	ByCode  []CountItem        `json:"byCode"`
	ByGroup []CountItem        `json:"byGroup"`
}

// Stats 教师看板：最近 50 条提交（新的在前），按作业码与组号计数
func (s *DashboardService) Stats() (*DashboardStats, error) {
	all, err := s.submissions.FindAll()
	if err != nil {
		return nil, err
	}

	codes := make(map[string]int)
	groups := make(map[string]int)
	for _, sub := range all {
		codes[sub.Code]++
		groups[sub.Group]++
	}

	recent := all
	if len(recent) > dashboardRecentLimit {
		recent = recent[len(recent)-dashboardRecentLimit:]
	}
	reversed := make([]model.Submission, len(recent))
	for i, sub := range recent {
		reversed[len(recent)-1-i] = sub
	}

	return &DashboardStats{
		Total:   len(all),
		Recent:  reversed,
		ByCode:  sortedCounts(codes),
		ByGroup: sortedCounts(groups),
	}, nil
}

// Submissions 全部提交，可按作业码过滤
func (s *DashboardService) Submissions(code string) ([]model.Submission, error) {
	if code != "" {
		return s.submissions.FindByCode(code)
	}
	return s.submissions.FindAll()
}

// SubmissionsCSV 提交记录原文件；文件不存在时 ok 为 false
func (s *DashboardService) SubmissionsCSV() ([]byte, bool, error) {
	return s.submissions.RawCSV()
}

func sortedCounts(m map[string]int) []CountItem {
	items := make([]CountItem, 0, len(m))
	for k, v := range m {
		items = append(items, CountItem{Key: k, Count: v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Key < items[j].Key
	})
	return items
}
