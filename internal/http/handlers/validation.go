package handlers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
)

var registerOnce sync.Once

// RegisterValidators adds the catalog tags to gin's binding validator:
// langcode (ISO 639-1 code) and assetvariant (PORTRAIT, LANDSCAPE, SQUARE or BANNER).
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("langcode", func(fl validator.FieldLevel) bool {
			_, err := catalog.ParseLanguage(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("assetvariant", func(fl validator.FieldLevel) bool {
			_, ok := catalog.ParseAssetVariant(fl.Field().String())
			return ok
		})
	})
}
