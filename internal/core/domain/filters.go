package domain

// SortOrder - направление сортировки.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case SortAsc, SortDesc:
		return SortOrder(s), true
	}
	return "", false
}

const (
	DefaultPage      = 1
	DefaultLimit     = 20
	MaxLimit         = 100
	DefaultSortBy    = "createdAt"
	DefaultSortOrder = SortDesc
)

// FilterSpec - провалидированные фильтры одного поиска.
// Создается на каждый запрос и не меняется после компиляции.
type FilterSpec struct {
	Query         string
	PropertyTypes []PropertyType
	ListingType   ListingType

	PriceMin *float64
	PriceMax *float64
	AreaMin  *float64
	AreaMax  *float64

	Bedrooms  []int
	Bathrooms []int

	City      string
	District  string
	Amenities []string

	// Флаги ограничивают выборку только когда равны true
	HasElevator bool
	HasParking  bool
	HasBalcony  bool
	HasStorage  bool
	IsFeatured  bool

	Status PropertyStatus

	Page      int
	Limit     int
	SortBy    string
	SortOrder SortOrder
}

// DefaultFilterSpec - спецификация публичного поиска без фильтров.
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{
		Status:    StatusActive,
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
	}
}

// Offset - сколько записей пропустить для текущей страницы.
func (f FilterSpec) Offset() int {
	return (f.Page - 1) * f.Limit
}
