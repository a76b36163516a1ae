package template

import "time"

// Template holds a published title and description plus pending drafts.
type Template struct {
	ID                   string    `json:"id"`
	OwnerID              string    `json:"-"`
	PublishedTitle       string    `json:"publishedTitle"`
	PublishedDescription string    `json:"publishedDescription"`
	DraftedTitle         string    `json:"draftedTitle"`
	DraftedDescription   string    `json:"draftedDescription"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// CreateInput seeds a new template. Both fields start as drafts.
type CreateInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// UpdateInput changes only the fields that are present.
type UpdateInput struct {
	TemplateID           string  `json:"templateId" validate:"required,uuid"`
	PublishedTitle       *string `json:"publishedTitle" validate:"omitempty,max=200"`
	PublishedDescription *string `json:"publishedDescription" validate:"omitempty,max=5000"`
	DraftedTitle         *string `json:"draftedTitle" validate:"omitempty,max=200"`
	DraftedDescription   *string `json:"draftedDescription" validate:"omitempty,max=5000"`
}

func (in UpdateInput) apply(t *Template) {
	if in.PublishedTitle != nil {
		t.PublishedTitle = *in.PublishedTitle
	}
	if in.PublishedDescription != nil {
		t.PublishedDescription = *in.PublishedDescription
	}
	if in.DraftedTitle != nil {
		t.DraftedTitle = *in.DraftedTitle
	}
	if in.DraftedDescription != nil {
		t.DraftedDescription = *in.DraftedDescription
	}
}

// publish moves non-empty drafts into the published fields and clears them.
func (t *Template) publish() {
	if t.DraftedTitle != "" {
		t.PublishedTitle = t.DraftedTitle
	}
	if t.DraftedDescription != "" {
		t.PublishedDescription = t.DraftedDescription
	}
	t.DraftedTitle = ""
	t.DraftedDescription = ""
}
