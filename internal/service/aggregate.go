package service

import (
	"sort"

	"github.com/kube-rca/dependabot-report/internal/model"
)

// NormalizeDismissed - dismissed_at이 있는 알림의 상태를 dismissed로 교정
func NormalizeDismissed(alerts []model.ProcessedAlert) {
	for i := range alerts {
		if alerts[i].DismissedAt != nil {
			alerts[i].State = model.StateDismissed
		}
	}
}

// FilterCritical - severity가 정확히 "critical"인 알림만 반환 (severity 없음은 제외)
func FilterCritical(alerts []model.ProcessedAlert) []model.ProcessedAlert {
	critical := make([]model.ProcessedAlert, 0, len(alerts))
	for _, a := range alerts {
		if a.Severity == model.SeverityCritical {
			critical = append(critical, a)
		}
	}
	return critical
}

// CountByState - 저장소 x 상태 pivot
//
// critical 알림이 하나라도 있는 저장소마다 한 행을 만들고 없는 조합은 0으로 채움
// open 내림차순, 같으면 저장소 이름 오름차순
func CountByState(alerts []model.ProcessedAlert) []model.StateCount {
	byRepo := make(map[string]*model.StateCount)
	for _, a := range alerts {
		count, ok := byRepo[a.Repository]
		if !ok {
			count = &model.StateCount{Repository: a.Repository}
			byRepo[a.Repository] = count
		}
		switch a.State {
		case model.StateOpen:
			count.Open++
		case model.StateDismissed:
			count.Dismissed++
		case model.StateFixed:
			count.Fixed++
		}
	}

	counts := make([]model.StateCount, 0, len(byRepo))
	for _, count := range byRepo {
		counts = append(counts, *count)
	}
	sortCounts(counts, model.StateOpen)
	return counts
}

// StateCounts - 특정 상태의 카운트가 0이 아닌 저장소만 해당 카운트 내림차순으로 반환
func StateCounts(counts []model.StateCount, state string) []model.StateCount {
	out := make([]model.StateCount, 0, len(counts))
	for _, count := range counts {
		if count.Get(state) > 0 {
			out = append(out, count)
		}
	}
	sortCounts(out, state)
	return out
}

func sortCounts(counts []model.StateCount, state string) {
	sort.SliceStable(counts, func(i, j int) bool {
		if ci, cj := counts[i].Get(state), counts[j].Get(state); ci != cj {
			return ci > cj
		}
		return counts[i].Repository < counts[j].Repository
	})
}

// AlertsByDate - open 알림의 Advisory별 가장 최근 created_at
//
// ghsa_id가 비어 있는 알림은 제외, 최신순 정렬 (같으면 ghsa_id 오름차순, 시각 없음은 마지막)
func AlertsByDate(alerts []model.ProcessedAlert) []model.AdvisoryDate {
	latest := make(map[string]*model.AdvisoryDate)
	order := make([]string, 0)
	for _, a := range alerts {
		if a.State != model.StateOpen || a.GHSAID == "" {
			continue
		}
		entry, ok := latest[a.GHSAID]
		if !ok {
			entry = &model.AdvisoryDate{GHSAID: a.GHSAID}
			latest[a.GHSAID] = entry
			order = append(order, a.GHSAID)
		}
		if a.CreatedAt != nil && (entry.CreatedAt == nil || a.CreatedAt.After(*entry.CreatedAt)) {
			entry.CreatedAt = a.CreatedAt
		}
	}

	dates := make([]model.AdvisoryDate, 0, len(order))
	for _, id := range order {
		dates = append(dates, *latest[id])
	}
	sort.SliceStable(dates, func(i, j int) bool {
		ti, tj := dates[i].CreatedAt, dates[j].CreatedAt
		switch {
		case ti == nil && tj == nil:
			return dates[i].GHSAID < dates[j].GHSAID
		case ti == nil:
			return false
		case tj == nil:
			return true
		case !ti.Equal(*tj):
			return ti.After(*tj)
		default:
			return dates[i].GHSAID < dates[j].GHSAID
		}
	})
	return dates
}
