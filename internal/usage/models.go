package usage

import "time"

// ChatUsage 는 일자별 대화 트래픽 집계를 저장하는 DB 모델이다.
type ChatUsage struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	UsageDate    time.Time `gorm:"column:usage_date;type:date"`
	RequestCount int64     `gorm:"column:request_count"`
	InputChars   int64     `gorm:"column:input_chars"`
	OutputChars  int64     `gorm:"column:output_chars"`
	Version      int64     `gorm:"column:version"`
}

// TableName 은 GORM에서 사용할 테이블명을 반환한다.
func (ChatUsage) TableName() string {
	return "chat_usage"
}

// Delta 는 한 번에 누적할 증가분이다.
type Delta struct {
	Requests    int64
	InputChars  int64
	OutputChars int64
}

// IsZero 는 기록할 내용이 없는지 확인한다.
func (d Delta) IsZero() bool {
	return d.Requests <= 0 && d.InputChars <= 0 && d.OutputChars <= 0
}

// Add 는 두 증가분을 합친다.
func (d Delta) Add(other Delta) Delta {
	return Delta{
		Requests:    d.Requests + other.Requests,
		InputChars:  d.InputChars + other.InputChars,
		OutputChars: d.OutputChars + other.OutputChars,
	}
}

// DailyUsage 는 API/집계용 일자별 사용량 뷰 모델이다.
type DailyUsage struct {
	UsageDate    time.Time `json:"date"`
	RequestCount int64     `json:"requests"`
	InputChars   int64     `json:"inputChars"`
	OutputChars  int64     `json:"outputChars"`
}

// TotalChars 는 입력+출력 문자 수 합계를 반환한다.
func (d DailyUsage) TotalChars() int64 {
	return d.InputChars + d.OutputChars
}
