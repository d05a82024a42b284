// Пакет stats — вычисление дневной статистики по событиям:
// календарное окно, разбор величины из строки, агрегация по животным.
// Все функции чистые и не хранят состояния.
package stats

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate — строка не является корректной календарной датой ISO 8601.
var ErrInvalidDate = errors.New("некорректная календарная дата")

// dateLayout — формат даты ISO 8601 без времени.
const dateLayout = "2006-01-02"

// Date — календарная дата без времени и часового пояса.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate разбирает дату формата YYYY-MM-DD.
// Несуществующие даты (2023-02-29) отклоняются.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// DateOf возвращает календарную дату момента t в его собственном часовом поясе.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Valid сообщает, существует ли такая дата в календаре.
func (d Date) Valid() bool {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return DateOf(t) == d
}

// String возвращает дату в формате YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// WindowResolver переводит календарную дату в интервал [начало, конец] дня.
// Часовой пояс фиксируется при развёртывании и общий для всего процесса.
type WindowResolver struct {
	loc *time.Location
}

// NewWindowResolver создаёт резолвер для часового пояса loc (nil — time.Local).
func NewWindowResolver(loc *time.Location) *WindowResolver {
	if loc == nil {
		loc = time.Local
	}
	return &WindowResolver{loc: loc}
}

// Resolve возвращает начало (00:00:00.000000000) и конец (23:59:59.999999999) дня.
// Обе границы включительные.
func (r *WindowResolver) Resolve(d Date) (start, end time.Time, err error) {
	if !d.Valid() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, d)
	}
	start = time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, r.loc)
	end = time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 999999999, r.loc)
	return start, end, nil
}
