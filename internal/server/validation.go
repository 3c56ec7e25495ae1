package server

import (
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("caption", func(fl validator.FieldLevel) bool {
			return isPrintableText(fl.Field().String())
		})
	})
}

// isPrintableText rejects control characters; everything else, including
// non-ASCII, is allowed in captions.
func isPrintableText(text string) bool {
	for _, r := range text {
		if r == '\n' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
