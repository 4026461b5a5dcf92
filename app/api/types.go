package api

import (
	"fxpulse/app/quota"
)

type ItemStats interface {
	Stats() (total, alerted int, err error)
}

type BudgetStatus interface {
	Remaining() (int64, error)
	Status() (quota.Status, error)
}

type Handler struct {
	items       ItemStats
	budget      BudgetStatus
	sourceCount int
	version     string
}
