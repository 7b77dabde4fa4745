package v1

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goldlab/assay-api/internal/domain"
)

func parsePage(ctx *gin.Context) (domain.Page, error) {
	number, err := queryInt(ctx, "page")
	if err != nil {
		return domain.Page{}, err
	}
	size, err := queryInt(ctx, "page_size")
	if err != nil {
		return domain.Page{}, err
	}

	return domain.NewPage(number, size), nil
}

func queryInt(ctx *gin.Context, key string) (int, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}

	return n, nil
}

func queryBool(ctx *gin.Context, key string) (*bool, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return nil, nil
	}

	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}

	return &b, nil
}

func paramID(ctx *gin.Context, key string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(key), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, ctx.Param(key))
	}

	return uint(id), nil
}

// calendar reads YYYY-MM-DD days as midnight in store. A missing day is
// the current date in the shop timezone.
type calendar struct {
	shop  *time.Location
	store *time.Location
	now   func() time.Time
}

func shopCalendar(loc *time.Location) calendar {
	return calendar{shop: loc, store: loc}
}

// utcCalendar keeps shop dates as UTC midnight.
func utcCalendar(shop *time.Location) calendar {
	return calendar{shop: shop, store: time.UTC}
}

func (c calendar) today() time.Time {
	now := time.Now()
	if c.now != nil {
		now = c.now()
	}
	local := now.In(c.shop)

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.store)
}

// queryDay reads a YYYY-MM-DD query value. A missing value yields today.
func queryDay(ctx *gin.Context, key string, cal calendar) (time.Time, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return cal.today(), nil
	}

	return domain.ParseDay(raw, cal.store)
}

// queryPeriod reads the inclusive from/to days. Missing bounds default to
// today, a lone date selects that day.
func queryPeriod(ctx *gin.Context, cal calendar) (domain.Period, error) {
	if ctx.Query("from") == "" && ctx.Query("to") == "" && ctx.Query("date") != "" {
		day, err := queryDay(ctx, "date", cal)
		if err != nil {
			return domain.Period{}, err
		}
		return domain.DayPeriod(day, cal.store), nil
	}

	from, err := queryDay(ctx, "from", cal)
	if err != nil {
		return domain.Period{}, err
	}
	to, err := queryDay(ctx, "to", cal)
	if err != nil {
		return domain.Period{}, err
	}

	period, err := domain.NewPeriod(from, to)
	if err != nil {
		return domain.Period{}, err
	}

	return period, nil
}

// optionalPeriod is queryPeriod for list endpoints, where no dates at all
// means no date filter.
func optionalPeriod(ctx *gin.Context, cal calendar) (domain.Period, error) {
	if ctx.Query("from") == "" && ctx.Query("to") == "" && ctx.Query("date") == "" {
		return domain.Period{}, nil
	}

	return queryPeriod(ctx, cal)
}

// issuedAt combines the optional date and time of a token body. Both empty
// yields the zero time, which the service replaces with now.
func issuedAt(date, clock string, loc *time.Location) (time.Time, error) {
	if date == "" && clock == "" {
		return time.Time{}, nil
	}
	if date == "" {
		return time.Time{}, errors.New("date is required when time is given")
	}
	if clock == "" {
		clock = "00:00:00"
	}
	if len(clock) == len("15:04") {
		clock += ":00"
	}

	t, err := time.ParseInLocation(domain.DateLayout+" "+domain.TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time: %w", err)
	}

	return t, nil
}
