// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "time"

// FilingIngestTask 是一次异步导入任务。申报 JSON 已归档在 MinIO 的 ObjectName 下。
type FilingIngestTask struct {
	TaskID      string    `json:"task_id"`
	ObjectName  string    `json:"object_name"`
	FileName    string    `json:"file_name"`
	UserID      *uint     `json:"user_id,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}
