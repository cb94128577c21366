package telemetry

import "errors"

var ErrNoSuchCar = errors.New("telemetry: no such car")
