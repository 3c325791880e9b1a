package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/pkg/log"
	"filing-advisor-go/pkg/tasks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxFilingBytes 限制单份申报 JSON 的大小。
const maxFilingBytes = 64 << 20

// Ingester 是同步导入所需的接口，由 pipeline.Processor 实现。
type Ingester interface {
	IngestJSON(ctx context.Context, data []byte) (*model.IngestionOutcome, error)
}

// FilingArchiver 把原始申报归档到对象存储。
type FilingArchiver interface {
	PutFiling(ctx context.Context, objectName string, data []byte) error
}

// TaskPublisher 发布异步导入任务。
type TaskPublisher interface {
	PublishIngestTask(ctx context.Context, task tasks.FilingIngestTask) error
}

// IngestHandler 负责申报文件的导入请求。
type IngestHandler struct {
	ingester  Ingester
	archiver  FilingArchiver
	publisher TaskPublisher
}

// NewIngestHandler 创建 IngestHandler。archiver 或 publisher 为 nil 时异步导入不可用。
func NewIngestHandler(ingester Ingester, archiver FilingArchiver, publisher TaskPublisher) *IngestHandler {
	return &IngestHandler{ingester: ingester, archiver: archiver, publisher: publisher}
}

// Ingest 处理 POST /ingest，支持 multipart 的 file 字段或直接提交 JSON。
func (h *IngestHandler) Ingest(c *gin.Context) {
	data, _, ok := readFiling(c)
	if !ok {
		return
	}
	outcome, err := h.ingester.IngestJSON(c.Request.Context(), data)
	if err != nil {
		failWithError(c, "Ingest", err)
		return
	}
	msg := "导入完成"
	if outcome.Skipped {
		msg = "缺少 cik, 已跳过"
	}
	success(c, msg, outcome)
}

// IngestAsync 处理 POST /ingest/async：归档到 MinIO 后投递 Kafka 任务。
func (h *IngestHandler) IngestAsync(c *gin.Context) {
	if h.archiver == nil || h.publisher == nil {
		fail(c, http.StatusServiceUnavailable, "异步导入未启用")
		return
	}
	data, fileName, ok := readFiling(c)
	if !ok {
		return
	}
	if !json.Valid(data) {
		fail(c, http.StatusBadRequest, "无效的申报 JSON")
		return
	}

	taskID := uuid.NewString()
	task := tasks.FilingIngestTask{
		TaskID:      taskID,
		ObjectName:  path.Join("filings", taskID+".json"),
		FileName:    fileName,
		SubmittedAt: time.Now().UTC(),
	}
	ctx := c.Request.Context()
	if err := h.archiver.PutFiling(ctx, task.ObjectName, data); err != nil {
		failWithError(c, "IngestAsync: archive", err)
		return
	}
	if err := h.publisher.PublishIngestTask(ctx, task); err != nil {
		failWithError(c, "IngestAsync: publish", err)
		return
	}
	log.Infof("[IngestHandler] 已投递导入任务, TaskID: %s, Object: %s", taskID, task.ObjectName)
	c.JSON(http.StatusAccepted, gin.H{
		"code":    http.StatusAccepted,
		"message": "queued",
		"data":    gin.H{"status": "queued", "task_id": taskID},
	})
}

// readFiling 读取请求中的申报内容，失败时已经写好响应。
func readFiling(c *gin.Context) ([]byte, string, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			fail(c, http.StatusBadRequest, "缺少 file 字段")
			return nil, "", false
		}
		f, err := fh.Open()
		if err != nil {
			fail(c, http.StatusBadRequest, "无法读取上传文件")
			return nil, "", false
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxFilingBytes))
		if err != nil {
			fail(c, http.StatusBadRequest, "无法读取上传文件")
			return nil, "", false
		}
		return data, fh.Filename, true
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFilingBytes))
	if err != nil || len(data) == 0 {
		fail(c, http.StatusBadRequest, "请求体为空")
		return nil, "", false
	}
	return data, "", true
}
