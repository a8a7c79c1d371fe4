package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RubricCriterion is one named criterion with its score cap.
type RubricCriterion struct {
	Name     string  `json:"name"`
	MaxScore float64 `json:"max_score"`
}

// CriteriaList is stored as a JSON column.
type CriteriaList []RubricCriterion

func (c CriteriaList) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *CriteriaList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = nil
		return nil
	}
	return fmt.Errorf("unsupported criteria column type %T", value)
}

// EvaluationRubric represents the evaluation_rubrics table
type EvaluationRubric struct {
	RubricID uint         `gorm:"primaryKey;column:rubric_id" json:"rubric_id"`
	Name     string       `gorm:"column:name" json:"name"`
	Criteria CriteriaList `gorm:"column:criteria;type:json" json:"criteria"`
	MaxScore float64      `gorm:"column:max_score" json:"max_score"`
}

// TableName overrides the table name for EvaluationRubric
func (EvaluationRubric) TableName() string {
	return "evaluation_rubrics"
}

// CriterionScore is one awarded score, matched to a rubric criterion by name.
type CriterionScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ScoreList is stored as a JSON column.
type ScoreList []CriterionScore

func (s ScoreList) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *ScoreList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = nil
		return nil
	}
	return fmt.Errorf("unsupported scores column type %T", value)
}

// Total sums the awarded scores.
func (s ScoreList) Total() float64 {
	var total float64
	for _, cs := range s {
		total += cs.Score
	}
	return total
}

// Evaluation represents the evaluations table. One evaluation per
// (project, evaluator) pair: the pair carries a unique index and a second
// insert fails with a conflict instead of overwriting.
type Evaluation struct {
	EvaluationID uint      `gorm:"primaryKey;column:evaluation_id" json:"evaluation_id"`
	ProjectID    uint      `gorm:"column:project_id;uniqueIndex:uniq_project_evaluator" json:"project_id"`
	EvaluatorID  uint      `gorm:"column:evaluator_id;uniqueIndex:uniq_project_evaluator" json:"evaluator_id"`
	RubricID     *uint     `gorm:"column:rubric_id" json:"rubric_id,omitempty"`
	Scores       ScoreList `gorm:"column:scores;type:json" json:"scores"`
	TotalScore   float64   `gorm:"column:total_score" json:"total_score"`
	Comments     string    `gorm:"column:comments" json:"comments"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Project   Project           `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
	Evaluator User              `gorm:"foreignKey:EvaluatorID;references:UserID" json:"evaluator,omitempty"`
	Rubric    *EvaluationRubric `gorm:"foreignKey:RubricID;references:RubricID" json:"rubric,omitempty"`
}

// TableName overrides the table name for Evaluation
func (Evaluation) TableName() string {
	return "evaluations"
}
