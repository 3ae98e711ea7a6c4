package service

import (
	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/pkg/sms"
)

// RoleDirect 학생과 연결되지 않은 개별 수신자
const RoleDirect model.RecipientRole = "direct"

// Recipient 메시지 한 건의 수신자
type Recipient struct {
	Role  model.RecipientRole
	Phone string
}

// ResolveRecipients 수신 대상에 따른 번호 목록. 번호가 없는 쪽은 건너뛴다.
// 결과가 비어도 오류가 아니다.
func ResolveRecipients(student *model.Student, target model.RecipientTarget) []Recipient {
	var out []Recipient
	add := func(role model.RecipientRole, phone string) {
		if p := sms.NormalizePhone(phone); p != "" {
			out = append(out, Recipient{Role: role, Phone: p})
		}
	}

	switch target {
	case model.TargetStudent:
		add(model.RoleStudent, student.Phone)
	case model.TargetParent:
		add(model.RoleParent, student.ParentPhone)
	case model.TargetBoth:
		add(model.RoleStudent, student.Phone)
		add(model.RoleParent, student.ParentPhone)
	}
	return out
}

// ApplyExclusion 제외 목록의 학생을 뺀다. 순서는 유지된다.
func ApplyExclusion(students []model.Student, excluded []string) []model.Student {
	if len(excluded) == 0 {
		return students
	}
	skip := make(map[string]struct{}, len(excluded))
	for _, id := range excluded {
		skip[id] = struct{}{}
	}

	out := make([]model.Student, 0, len(students))
	for _, s := range students {
		if _, ok := skip[s.StudentID]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// directRecipients 직접 입력한 번호 목록. 빈 번호와 중복은 뺀다.
func directRecipients(phones []string) []Recipient {
	seen := make(map[string]struct{}, len(phones))
	var out []Recipient
	for _, raw := range phones {
		p := sms.NormalizePhone(raw)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, Recipient{Role: RoleDirect, Phone: p})
	}
	return out
}
