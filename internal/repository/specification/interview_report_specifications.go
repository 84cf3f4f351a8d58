package specification

import "gorm.io/gorm"

// BySessionID filters reports by the interview session they describe
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByDecision filters reports by hiring decision
type ByDecision struct {
	Decision string
}

func (s ByDecision) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("decision = ?", s.Decision)
}
