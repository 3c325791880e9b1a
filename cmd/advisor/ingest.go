package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/pkg/log"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

// progressEvery 控制批量导入时多少个文件打印一次进度。
const progressEvery = 10

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir|file.json>...",
	Short: "Ingest filing JSON files sequentially; directories are scanned for *.json",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		paths, err := collectFilingPaths(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			log.Warnf("没有找到任何 .json 申报文件")
			return nil
		}

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		summary := runBatch(ctx, paths, a.newProcessor(nil).IngestFile)
		log.Infof("批量导入完成: 成功 %d / 共 %d 个文件, 跳过 %d, 失败 %d",
			summary.succeeded, summary.total, summary.skipped, summary.failed)
		return nil
	},
}

type batchSummary struct {
	total, succeeded, skipped, failed int
}

// runBatch 顺序导入，单个文件失败不影响后续文件。
func runBatch(ctx context.Context, paths []string, ingest func(context.Context, string) (*model.IngestionOutcome, error)) batchSummary {
	s := batchSummary{total: len(paths)}
	for i, p := range paths {
		if ctx.Err() != nil {
			log.Warnf("批量导入被中断, 已处理 %d/%d", i, len(paths))
			break
		}
		outcome, err := ingest(ctx, p)
		switch {
		case err != nil:
			s.failed++
			log.Errorf("导入失败: %s, error: %v", p, err)
		case outcome.Skipped:
			s.skipped++
			log.Warnf("已跳过: %s, reason: %s", p, outcome.SkipReason)
		case outcome.Failed() > 0:
			s.failed++
			log.Warnf("部分章节导入失败: %s, 成功 %d, 失败 %d", p, outcome.Succeeded(), outcome.Failed())
		default:
			s.succeeded++
		}
		if (i+1)%progressEvery == 0 {
			log.Infof("已处理 %d/%d 个文件...", i+1, len(paths))
		}
	}
	return s
}

// collectFilingPaths 展开参数中的目录，按文件名排序返回全部 .json 文件。
func collectFilingPaths(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: stat %s", arg)
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read dir %s", arg)
		}
		var files []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
				files = append(files, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(files)
		out = append(out, files...)
	}
	return out, nil
}
