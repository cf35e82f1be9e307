package models

// Snapshot bundles every collection for backup and restore.
type Snapshot struct {
	Users        []*User          `json:"users"`
	Guilds       []*GuildSettings `json:"guilds"`
	Warnings     []*Warning       `json:"warnings"`
	Tickets      []*Ticket        `json:"tickets"`
	Transcripts  []*Transcript    `json:"transcripts"`
	Transactions []*Transaction   `json:"transactions"`
	CreatedAt    int64            `json:"created_at"`
}

// BackupMetadata is the sidecar document written next to each backup
// payload file.
type BackupMetadata struct {
	BackupID         string  `json:"backup_id"`
	BackupType       string  `json:"backup_type"`
	Timestamp        int64   `json:"timestamp"`
	TotalUsers       int     `json:"total_users"`
	TotalGuilds      int     `json:"total_guilds"`
	BackupSize       int64   `json:"backup_size"`
	CompressionRatio float64 `json:"compression_ratio"`
}
