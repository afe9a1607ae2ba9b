package hall

import "errors"

var (
	ErrHallNotFound   = errors.New("hall not found")
	ErrTariffNotFound = errors.New("no tariff for this hall segment")
)
