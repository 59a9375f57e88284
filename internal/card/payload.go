// Package card models business-card data extracted by the service and the
// editable draft a user works on before saving it.
package card

import (
	"fmt"
	"strings"
)

// Person is the person block of a card.
type Person struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Company is the company block of a card. A blank name is omitted on the
// wire so an empty company is sent as {}.
type Company struct {
	Name string `json:"name,omitempty"`
}

// Payload is the structured contact produced by extraction and consumed by
// the save call.
type Payload struct {
	Person  Person  `json:"person_data"`
	Company Company `json:"company_data"`
}

const missingField = "-"

func orMissing(s string) string {
	if s == "" {
		return missingField
	}
	return s
}

// ConfirmationText renders the extracted fields for the user to accept or
// edit. Missing fields render as "-".
func ConfirmationText(p Payload) string {
	var sb strings.Builder
	sb.WriteString("📇 명함 정보를 추출했습니다:\n\n")
	fmt.Fprintf(&sb, "**이름:** %s\n", orMissing(p.Person.Name))
	fmt.Fprintf(&sb, "**직책:** %s\n", orMissing(p.Person.Title))
	fmt.Fprintf(&sb, "**회사:** %s\n", orMissing(p.Company.Name))
	fmt.Fprintf(&sb, "**전화:** %s\n", orMissing(p.Person.Phone))
	fmt.Fprintf(&sb, "**이메일:** %s\n", orMissing(p.Person.Email))
	sb.WriteString("\n이 정보가 맞습니까?")
	return sb.String()
}
