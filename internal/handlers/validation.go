package handlers

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/academic-scheduler/internal/schedule"
)

var registerOnce sync.Once

// registerValidators adds the scheduling tags to gin's validator and makes
// error messages use JSON field names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			_, err := schedule.ParseClock(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := schedule.ParseDate(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			return schedule.IsWeekday(fl.Field().String())
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
	})
}
