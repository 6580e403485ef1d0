package model

// Theme groups questions by subject area. The assembler samples a configured
// number of questions from each theme.
type Theme struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// QuestionType classifies how a question is answered (single choice,
// multiple choice, free text).
type QuestionType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Question is static content. It belongs to exactly one theme and one
// question type and owns an ordered set of possible answers.
type Question struct {
	ID          int    `json:"id"`
	ThemeID     int    `json:"theme_id"`
	TypeID      int    `json:"type_id"`
	Text        string `json:"text"`
	Explanation string `json:"explanation,omitempty"`

	Type            *QuestionType    `json:"type,omitempty"`
	PossibleAnswers []PossibleAnswer `json:"possible_answers,omitempty"`
}

// PossibleAnswer is one selectable answer of a question, flagged correct or
// incorrect. Correctness is copied onto answer records at write time.
type PossibleAnswer struct {
	ID         int    `json:"id"`
	QuestionID int    `json:"question_id"`
	Text       string `json:"text"`
	Correct    bool   `json:"correct"`
}

// ThemeRequest is the payload for theme CRUD.
type ThemeRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=2000"`
}

// PossibleAnswerRequest is one answer option inside a question payload.
type PossibleAnswerRequest struct {
	Text    string `json:"text" binding:"required,min=1,max=2000"`
	Correct bool   `json:"correct"`
}

// QuestionRequest is the payload for creating or replacing a question with
// its possible answers.
type QuestionRequest struct {
	ThemeID         int                     `json:"theme_id" binding:"required,min=1"`
	TypeID          int                     `json:"type_id" binding:"required,min=1"`
	Text            string                  `json:"text" binding:"required,min=1,max=4000"`
	Explanation     string                  `json:"explanation" binding:"max=4000"`
	PossibleAnswers []PossibleAnswerRequest `json:"possible_answers" binding:"dive"`
}
