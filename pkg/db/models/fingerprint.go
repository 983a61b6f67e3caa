package models

import "time"

// Fingerprint is one cached content digest. The primary key is the
// (path, mod_time_ns, size) triple: a file whose mtime or size changed is a
// new row, and rows for old combinations are kept until the cache is
// explicitly cleared.
type Fingerprint struct {
	Path      string `gorm:"primaryKey;type:text"`
	ModTimeNS int64  `gorm:"primaryKey;column:mod_time_ns"`
	Size      int64  `gorm:"primaryKey"`

	Digest string `gorm:"type:text;not null;index:idx_fingerprints_digest"`

	CreatedAt time.Time
}

func (Fingerprint) TableName() string {
	return "fingerprints"
}

// ModTime converts the stored nanosecond timestamp back to time.Time.
func (f Fingerprint) ModTime() time.Time {
	return time.Unix(0, f.ModTimeNS)
}
