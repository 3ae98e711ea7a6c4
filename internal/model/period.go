package model

import (
	"fmt"
	"time"
)

// Period 월/주차 단위 기간. 학원 기록은 모두 이 값으로 묶인다.
//
// 주차는 달력 주가 아니라 일자를 7로 나눈 올림값이다.
// 29~31일은 모두 5주차가 된다.
type Period struct {
	Month int `json:"month" validate:"min=1,max=12"`
	Week  int `json:"week"  validate:"min=1,max=5"`
}

// MaxWeek 한 달의 마지막 주차
const MaxWeek = 5

// WeekOfDay 일자 → 주차
func WeekOfDay(day int) int {
	w := (day + 6) / 7
	if w < 1 {
		return 1
	}
	if w > MaxWeek {
		return MaxWeek
	}
	return w
}

// PeriodOf 날짜가 속한 기간
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Week: WeekOfDay(t.Day())}
}

// ParsePeriodDate "2006-01-02" 형식 날짜의 기간
func ParsePeriodDate(date string) (Period, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Period{}, false
	}
	return PeriodOf(t), true
}

// Key 정렬 키 month*10+week
func (p Period) Key() int {
	return p.Month*10 + p.Week
}

// Compare a<b 이면 음수, 같으면 0, 크면 양수
func (p Period) Compare(o Period) int {
	return p.Key() - o.Key()
}

// Within start ≤ p ≤ end
func (p Period) Within(start, end Period) bool {
	return p.Compare(start) >= 0 && p.Compare(end) <= 0
}

// Valid 월 1~12, 주차 1~5
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Week >= 1 && p.Week <= MaxWeek
}

// Next 다음 주차. 5주차 다음은 다음 달 1주차, 12월 다음은 1월.
func (p Period) Next() Period {
	if p.Week < MaxWeek {
		return Period{Month: p.Month, Week: p.Week + 1}
	}
	if p.Month == 12 {
		return Period{Month: 1, Week: 1}
	}
	return Period{Month: p.Month + 1, Week: 1}
}

// Label "11월 2주차"
func (p Period) Label() string {
	return fmt.Sprintf("%d월 %d주차", p.Month, p.Week)
}

func (p Period) String() string {
	return p.Label()
}

// MostRecent 가장 최근 기간. 빈 입력이면 false.
func MostRecent(periods []Period) (Period, bool) {
	if len(periods) == 0 {
		return Period{}, false
	}
	best := periods[0]
	for _, p := range periods[1:] {
		if p.Compare(best) >= 0 {
			best = p
		}
	}
	return best, true
}

// PeriodRange start 부터 end 까지의 주차 목록 (양 끝 포함)
// 연말을 넘기는 구간도 Next 로 이어진다. limit 개에서 멈춘다.
func PeriodRange(start, end Period, limit int) []Period {
	var out []Period
	cur := start
	for len(out) < limit {
		out = append(out, cur)
		if cur == end {
			break
		}
		cur = cur.Next()
	}
	return out
}

// MonthPeriods 한 달의 1~5주차
func MonthPeriods(month int) []Period {
	out := make([]Period, 0, MaxWeek)
	for w := 1; w <= MaxWeek; w++ {
		out = append(out, Period{Month: month, Week: w})
	}
	return out
}
