package middleware

import (
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

const name = "github.com/disclosurehub/disclosure-api/disclosure-api/server/middleware"

var tracer = otel.Tracer(name)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) Handler {
	return Handler{DB: db}
}
