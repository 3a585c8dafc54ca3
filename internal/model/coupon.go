package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Category is the fixed set of coupon categories.
type Category string

const (
	CategoryFood        Category = "FOOD"
	CategoryElectricity Category = "ELECTRICITY"
	CategoryRestaurant  Category = "RESTAURANT"
	CategoryVacation    Category = "VACATION"
	CategoryClothing    Category = "CLOTHING"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryFood,
	CategoryElectricity,
	CategoryRestaurant,
	CategoryVacation,
	CategoryClothing,
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Coupon represents a coupon owned by a company.
type Coupon struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"companyId"`
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Amount      int       `json:"amount"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"-"` // Not exposed in API
}

// Purchasable reports whether the coupon can still be bought on the given day.
func (c *Coupon) Purchasable(today time.Time) bool {
	return c.Amount > 0 && !c.EndDate.Before(today)
}

// ImageFile is an uploaded coupon image waiting to be sent to the hosting service.
type ImageFile struct {
	Name string
	Data []byte
}

// CouponDraft carries the fields of an add or update request.
// Nil fields mean "unchanged" on update.
type CouponDraft struct {
	ID          int64
	Category    *Category
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Amount      *int
	Price       *float64
	Image       *string
	ImageFile   *ImageFile
}

// CouponFilter narrows coupon listings. An empty Category or nil MaxPrice means no filter.
type CouponFilter struct {
	Category Category
	MaxPrice *float64
}

// CouponRequest is the DTO for adding or updating a coupon.
// It is bound from JSON or from a multipart form.
type CouponRequest struct {
	ID          *int64   `json:"id" form:"id" validate:"omitempty,gt=0"`
	Category    *string  `json:"category" form:"category" validate:"omitempty,category"`
	Title       *string  `json:"title" form:"title" validate:"omitempty,notblank,max=255"`
	Description *string  `json:"description" form:"description" validate:"omitempty,max=2000"`
	StartDate   *string  `json:"startDate" form:"startDate"`
	EndDate     *string  `json:"endDate" form:"endDate"`
	Amount      *int     `json:"amount" form:"amount" validate:"omitempty,gte=0,lte=2147483647"`
	Price       *float64 `json:"price" form:"price" validate:"omitempty,gte=0"`
	Image       *string  `json:"image" form:"image" validate:"omitempty,max=2048"`
}

// Draft converts the request into a CouponDraft, parsing category and dates.
func (r *CouponRequest) Draft() (*CouponDraft, error) {
	d := &CouponDraft{
		Title:       r.Title,
		Description: r.Description,
		Amount:      r.Amount,
		Price:       r.Price,
		Image:       r.Image,
	}
	if r.ID != nil {
		d.ID = *r.ID
	}
	if r.Category != nil {
		c, err := ParseCategory(*r.Category)
		if err != nil {
			return nil, err
		}
		d.Category = &c
	}
	if r.StartDate != nil {
		t, err := ParseDate(*r.StartDate)
		if err != nil {
			return nil, fmt.Errorf("startDate: %w", err)
		}
		d.StartDate = &t
	}
	if r.EndDate != nil {
		t, err := ParseDate(*r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("endDate: %w", err)
		}
		d.EndDate = &t
	}
	return d, nil
}

const (
	isoDateLayout     = "2006-01-02"
	browserDateLayout = "Mon Jan 02 2006 15:04:05 GMT-0700"
)

// zone names like "(Israel Daylight Time)" trail browser Date.toString() output
var trailingZoneName = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// ParseDate accepts "2006-01-02", RFC 3339, or a browser Date.toString() value such as
// "Tue Jun 15 2021 03:20:00 GMT+0300 (Israel Daylight Time)" and returns the
// calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(browserDateLayout, trailingZoneName.ReplaceAllString(s, ""))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return DateOf(t), nil
}

// DateOf truncates t to its calendar date, expressed at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
