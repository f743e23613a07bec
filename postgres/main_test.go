package postgres

import "github.com/rs/zerolog"

var testLogger = zerolog.Nop()
