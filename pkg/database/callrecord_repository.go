package database

import (
	"time"

	"gorm.io/gorm"
)

// CallRecordRepository handles call record database operations
type CallRecordRepository struct {
	db *gorm.DB
}

// NewCallRecordRepository creates a new call record repository
func NewCallRecordRepository(db *gorm.DB) *CallRecordRepository {
	return &CallRecordRepository{db: db}
}

// Create adds a new call record
func (r *CallRecordRepository) Create(rec *CallRecord) error {
	return r.db.Create(rec).Error
}

// GetRecent retrieves the most recent N calls
func (r *CallRecordRepository) GetRecent(limit int) ([]CallRecord, error) {
	var records []CallRecord
	err := r.db.Order("start_time DESC").Limit(limit).Find(&records).Error
	return records, err
}

// GetRecentPaginated retrieves calls with pagination
func (r *CallRecordRepository) GetRecentPaginated(page, perPage int) ([]CallRecord, int64, error) {
	var records []CallRecord
	var total int64

	if err := r.db.Model(&CallRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	err := r.db.Order("start_time DESC").
		Offset(offset).
		Limit(perPage).
		Find(&records).Error

	return records, total, err
}

// GetBySource retrieves calls made by a radio
func (r *CallRecordRepository) GetBySource(srcID uint32, limit int) ([]CallRecord, error) {
	var records []CallRecord
	err := r.db.Where("src_id = ?", srcID).
		Order("start_time DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// GetByDestination retrieves calls to a talkgroup or radio
func (r *CallRecordRepository) GetByDestination(dstID uint32, limit int) ([]CallRecord, error) {
	var records []CallRecord
	err := r.db.Where("dst_id = ?", dstID).
		Order("start_time DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// GetByTimeRange retrieves calls started within a time range
func (r *CallRecordRepository) GetByTimeRange(start, end time.Time, limit int) ([]CallRecord, error) {
	var records []CallRecord
	err := r.db.Where("start_time BETWEEN ? AND ?", start, end).
		Order("start_time DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// CountByReason returns how many calls ended for each reason
func (r *CallRecordRepository) CountByReason() (map[string]int64, error) {
	var rows []struct {
		EndReason string
		Count     int64
	}
	err := r.db.Model(&CallRecord{}).
		Select("end_reason, count(*) as count").
		Group("end_reason").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.EndReason] = row.Count
	}
	return counts, nil
}

// DeleteOlderThan deletes calls older than the specified time
func (r *CallRecordRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("start_time < ?", before).Delete(&CallRecord{})
	return result.RowsAffected, result.Error
}
