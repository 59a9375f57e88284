package card

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmationText_Full(t *testing.T) {
	p := Payload{
		Person:  Person{Name: "Kim", Title: "Manager", Phone: "010-1234-5678", Email: "kim@acme.com"},
		Company: Company{Name: "Acme"},
	}
	want := "📇 명함 정보를 추출했습니다:\n\n" +
		"**이름:** Kim\n" +
		"**직책:** Manager\n" +
		"**회사:** Acme\n" +
		"**전화:** 010-1234-5678\n" +
		"**이메일:** kim@acme.com\n" +
		"\n이 정보가 맞습니까?"
	assert.Equal(t, want, ConfirmationText(p))
}

func TestConfirmationText_MissingFields(t *testing.T) {
	text := ConfirmationText(Payload{Person: Person{Name: "Kim"}})
	assert.Contains(t, text, "**이름:** Kim\n")
	assert.Contains(t, text, "**직책:** -\n")
	assert.Contains(t, text, "**회사:** -\n")
	assert.Contains(t, text, "**전화:** -\n")
	assert.Contains(t, text, "**이메일:** -\n")
}

func TestPayload_UnmarshalServiceShape(t *testing.T) {
	raw := `{"person_data":{"name":"Kim","email":"k@a.io"},"company_data":{"name":"Acme"}}`
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, "Kim", p.Person.Name)
	assert.Equal(t, "k@a.io", p.Person.Email)
	assert.Equal(t, "Acme", p.Company.Name)
}

func TestDraftFrom_IsIndependentCopy(t *testing.T) {
	p := Payload{Person: Person{Name: "Kim"}, Company: Company{Name: "Acme"}}
	d := DraftFrom(p)
	assert.Equal(t, "Kim", d.Name)
	assert.Equal(t, "Acme", d.Company)

	d = d.Set(FieldCompany, "").Set(FieldName, "Lee")
	assert.Equal(t, "Kim", p.Person.Name)
	assert.Equal(t, "Acme", p.Company.Name)
}

func TestDraft_SetGet(t *testing.T) {
	var d Draft
	for i, f := range Fields {
		d = d.Set(f, f.Label())
		assert.Equal(t, f.Label(), d.Get(f), "field %d", i)
	}
}

func TestDraft_CanSave(t *testing.T) {
	assert.False(t, Draft{}.CanSave())
	assert.False(t, Draft{Name: "   "}.CanSave())
	assert.True(t, Draft{Name: "Kim"}.CanSave())
}

func TestDraft_PayloadOmitsBlankCompany(t *testing.T) {
	d := Draft{Name: "Kim", Title: "CTO"}
	body, err := json.Marshal(d.Payload())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"person_data":{"name":"Kim","title":"CTO","phone":"","email":""},"company_data":{}}`,
		string(body))
}

func TestDraft_PayloadKeepsCompany(t *testing.T) {
	body, err := json.Marshal(Draft{Name: "Kim", Company: "Acme"}.Payload())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"person_data":{"name":"Kim","title":"","phone":"","email":""},"company_data":{"name":"Acme"}}`,
		string(body))
}

func TestDraft_PayloadTrimsFields(t *testing.T) {
	d := Draft{Name: " Kim ", Title: "CTO\t", Company: "   ", Email: " kim@example.com"}
	require.True(t, d.CanSave())

	p := d.Payload()
	assert.Equal(t, Person{Name: "Kim", Title: "CTO", Email: "kim@example.com"}, p.Person)
	assert.Equal(t, Company{}, p.Company)
}
