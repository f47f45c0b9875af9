package models

type SortField string

const (
	SortByStatus    SortField = "status"
	SortByDueDate   SortField = "dueDate"
	SortByCreatedAt SortField = "createdAt"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

func (f SortField) Valid() bool {
	switch f {
	case SortByStatus, SortByDueDate, SortByCreatedAt:
		return true
	}
	return false
}
