package card

import (
	"fmt"
	"strings"
)

// Field names one editable draft field.
type Field int

const (
	FieldName Field = iota
	FieldTitle
	FieldCompany
	FieldPhone
	FieldEmail
)

// Fields lists the draft fields in form order.
var Fields = []Field{FieldName, FieldTitle, FieldCompany, FieldPhone, FieldEmail}

// Label is the form label shown for the field.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "이름"
	case FieldTitle:
		return "직책"
	case FieldCompany:
		return "회사"
	case FieldPhone:
		return "전화"
	case FieldEmail:
		return "이메일"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Draft is the editable copy of a pending card. It is a plain value, so
// editing it never reaches back into the Payload it was seeded from.
type Draft struct {
	Name    string
	Title   string
	Company string
	Phone   string
	Email   string
}

// DraftFrom seeds a draft with the payload's fields.
func DraftFrom(p Payload) Draft {
	return Draft{
		Name:    p.Person.Name,
		Title:   p.Person.Title,
		Company: p.Company.Name,
		Phone:   p.Person.Phone,
		Email:   p.Person.Email,
	}
}

// Get returns the value of f.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldName:
		return d.Name
	case FieldTitle:
		return d.Title
	case FieldCompany:
		return d.Company
	case FieldPhone:
		return d.Phone
	case FieldEmail:
		return d.Email
	}
	return ""
}

// Set returns a copy of d with f replaced by value.
func (d Draft) Set(f Field, value string) Draft {
	switch f {
	case FieldName:
		d.Name = value
	case FieldTitle:
		d.Title = value
	case FieldCompany:
		d.Company = value
	case FieldPhone:
		d.Phone = value
	case FieldEmail:
		d.Email = value
	}
	return d
}

// CanSave reports whether the draft has the one required field.
func (d Draft) CanSave() bool {
	return strings.TrimSpace(d.Name) != ""
}

// Payload builds a fresh payload from the draft with surrounding spaces
// trimmed from every field. A blank company is left out entirely rather
// than sent as an empty name.
func (d Draft) Payload() Payload {
	p := Payload{
		Person: Person{
			Name:  strings.TrimSpace(d.Name),
			Title: strings.TrimSpace(d.Title),
			Phone: strings.TrimSpace(d.Phone),
			Email: strings.TrimSpace(d.Email),
		},
	}
	if company := strings.TrimSpace(d.Company); company != "" {
		p.Company = Company{Name: company}
	}
	return p
}
