package service

// Image is a business-card photo selected for extraction.
type Image struct {
	Name string
	Data []byte
}

// Entity is one record the memo endpoint extracted from a note.
type Entity struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Date string `json:"date,omitempty"`
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

type memoRequest struct {
	Text string `json:"text"`
}

type memoResponse struct {
	ExtractedData struct {
		Entities []Entity `json:"entities"`
	} `json:"extracted_data"`
}

type healthResponse struct {
	Status string `json:"status"`
}
