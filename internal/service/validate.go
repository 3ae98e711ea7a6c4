package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/otee21c/learning-system-sub000/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return validSendTime(fl.Field().String())
	})
	return v
}

// validSendTime "HH:MM" 24시간 형식
func validSendTime(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// RunConfig 일괄 발송 설정
// StudentIDs 와 TargetGrade 가 모두 비어 있으면 전체 학생이 대상이다
type RunConfig struct {
	Period             model.Period
	TargetGrade        string                `validate:"max=20"`
	StudentIDs         []string              `validate:"omitempty,dive,required"`
	ExcludedStudentIDs []string              `validate:"omitempty,dive,required"`
	Include            model.ContentFlags    `validate:"-"`
	ExamScope          model.ExamScope       `validate:"omitempty,oneof=recent period"`
	RecipientTarget    model.RecipientTarget `validate:"required,oneof=student parent both"`
	Channel            model.Channel         `validate:"required,oneof=sms mms"`
	SenderType         model.SenderType      `validate:"required,oneof=main sub personal"`
	AdditionalText     string                `validate:"max=2000"`
	Image              []byte                `validate:"-"`
}

// withDefaults 비어 있는 선택 항목을 기본값으로 채운다
func (c RunConfig) withDefaults() RunConfig {
	if c.ExamScope == "" {
		c.ExamScope = model.ExamScopeRecent
	}
	if c.Channel == "" {
		c.Channel = model.ChannelSMS
	}
	if c.SenderType == "" {
		c.SenderType = model.SenderPersonal
	}
	return c
}

// validateRunConfig 발송 전에 설정 오류를 모두 걸러낸다
func validateRunConfig(c RunConfig) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRunConfig, describeValidation(err))
	}
	if !c.Include.Any() && strings.TrimSpace(c.AdditionalText) == "" {
		return ErrNoContentSelected
	}
	return nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
