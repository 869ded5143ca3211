package handlers

import (
	"sync"

	"backoffice/internal/domain/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request models.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("version_status", func(fl validator.FieldLevel) bool {
			return models.VersionStatus(fl.Field().String()).Valid()
		})
	})
}
