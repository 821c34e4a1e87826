package database

import (
	"gorm.io/gorm"
)

// RadioRepository handles radio id database operations
type RadioRepository struct {
	db *gorm.DB
}

// NewRadioRepository creates a new radio repository
func NewRadioRepository(db *gorm.DB) *RadioRepository {
	return &RadioRepository{db: db}
}

// Upsert creates or updates a radio record
func (r *RadioRepository) Upsert(radio *Radio) error {
	// Save updates if the primary key exists, otherwise creates
	return r.db.Save(radio).Error
}

// UpsertBatch efficiently upserts multiple radios in a transaction
func (r *RadioRepository) UpsertBatch(radios []Radio, batchSize int) error {
	if len(radios) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < len(radios); i += batchSize {
			end := i + batchSize
			if end > len(radios) {
				end = len(radios)
			}
			batch := radios[i:end]

			if err := tx.Save(&batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByRadioID retrieves a radio by id
func (r *RadioRepository) GetByRadioID(radioID uint32) (*Radio, error) {
	var radio Radio
	err := r.db.Where("radio_id = ?", radioID).First(&radio).Error
	if err != nil {
		return nil, err
	}
	return &radio, nil
}

// GetByCallsign retrieves a radio by its owner's callsign
func (r *RadioRepository) GetByCallsign(callsign string) (*Radio, error) {
	var radio Radio
	err := r.db.Where("callsign = ?", callsign).First(&radio).Error
	if err != nil {
		return nil, err
	}
	return &radio, nil
}

// All returns every radio, in id order
func (r *RadioRepository) All() ([]Radio, error) {
	var radios []Radio
	err := r.db.Order("radio_id").Find(&radios).Error
	return radios, err
}

// Count returns the total number of radios in the database
func (r *RadioRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&Radio{}).Count(&count).Error
	return count, err
}

// DeleteAll removes all radios from the database
func (r *RadioRepository) DeleteAll() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Radio{}).Error
}
