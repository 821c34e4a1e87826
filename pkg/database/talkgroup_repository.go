package database

import (
	"gorm.io/gorm"
)

// TalkgroupRepository handles talkgroup database operations
type TalkgroupRepository struct {
	db *gorm.DB
}

// NewTalkgroupRepository creates a new talkgroup repository
func NewTalkgroupRepository(db *gorm.DB) *TalkgroupRepository {
	return &TalkgroupRepository{db: db}
}

// Upsert creates or updates a talkgroup
func (r *TalkgroupRepository) Upsert(tg *Talkgroup) error {
	return r.db.Save(tg).Error
}

// GetByID retrieves a talkgroup by id
func (r *TalkgroupRepository) GetByID(id uint32) (*Talkgroup, error) {
	var tg Talkgroup
	err := r.db.Where("talkgroup_id = ?", id).First(&tg).Error
	if err != nil {
		return nil, err
	}
	return &tg, nil
}

// All returns every talkgroup, in id order
func (r *TalkgroupRepository) All() ([]Talkgroup, error) {
	var tgs []Talkgroup
	err := r.db.Order("talkgroup_id").Find(&tgs).Error
	return tgs, err
}

// Delete removes a talkgroup
func (r *TalkgroupRepository) Delete(id uint32) error {
	return r.db.Delete(&Talkgroup{}, "talkgroup_id = ?", id).Error
}
