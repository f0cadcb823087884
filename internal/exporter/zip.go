package exporter

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/silvioheinze/isr-field-sub000/internal/config"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/mailer"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/repository"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
	"go.uber.org/zap"
)

// ZipExporter builds ZIP bundles of a dataset's entry files: it filters the
// attachments by type and date, organizes them into folders, writes optional
// metadata files, archives everything and notifies the requesting user.
type ZipExporter struct {
	repo   *repository.Repository
	s3     *minio.Client
	mail   mailer.Client
	cfg    config.ExportConfig
	logger *zap.SugaredLogger
}

func NewZipExporter(repo *repository.Repository, s3 *minio.Client, mail mailer.Client, cfg config.ExportConfig, logger *zap.SugaredLogger) *ZipExporter {
	return &ZipExporter{repo: repo, s3: s3, mail: mail, cfg: cfg, logger: logger}
}

// Run executes the export task end to end. Failures are recorded on the
// task and reported by mail; the returned error is for the caller's retry
// accounting.
func (ze *ZipExporter) Run(ctx context.Context, taskId string) error {
	task, err := ze.repo.ExportTask.GetById(ctx, nil, taskId)
	if err != nil {
		return err
	}
	if task.IsTerminal() {
		ze.logger.Warnf("Export task %s already finished with status %s, skipping", taskId, task.Status)
		return nil
	}

	if err := ze.repo.ExportTask.MarkProcessing(ctx, nil, taskId); err != nil {
		return err
	}

	archivePath, fileCount, err := ze.build(ctx, task)
	if err != nil {
		ze.logger.Errorf("Export task %s failed: %v", taskId, err)
		if markErr := ze.repo.ExportTask.MarkFailed(ctx, nil, taskId, err.Error()); markErr != nil {
			ze.logger.Errorf("Failed to record failure of export task %s: %v", taskId, markErr)
		}
		ze.notifyFailure(task, err)
		return err
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return err
	}

	archiveName := filepath.Base(archivePath)
	if err := ze.repo.ExportTask.MarkCompleted(ctx, nil, taskId, archiveName, info.Size()); err != nil {
		return err
	}

	ze.notifySuccess(task, archiveName, fileCount, info.Size())
	ze.logger.Infof("Export task %s completed: %s (%d files, %d bytes)", taskId, archiveName, fileCount, info.Size())
	return nil
}

func (ze *ZipExporter) build(ctx context.Context, task *model.ExportTask) (string, int, error) {
	files, err := ze.repo.EntryFile.ListByDataset(ctx, nil, task.DatasetID)
	if err != nil {
		return "", 0, err
	}

	types, err := parseFileTypes(task.FileTypes)
	if err != nil {
		return "", 0, err
	}
	files = FilterFiles(files, types, task.DateFrom, task.DateTo)

	stagingDir := filepath.Join(ze.cfg.WorkDir, "staging", task.ID)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", 0, err
	}
	defer os.RemoveAll(stagingDir)

	paths := archivePaths(files, task.OrganizeBy)
	for i, file := range files {
		localPath := filepath.Join(stagingDir, paths[i])
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return "", 0, err
		}
		if err := file.DownloadToLocal(ctx, ze.s3, localPath); err != nil {
			return "", 0, fmt.Errorf("failed to fetch %s: %w", file.UniqueFileName, err)
		}
	}

	if task.IncludeMetadata {
		if err := ze.writeMetadata(stagingDir, task, files, paths); err != nil {
			return "", 0, err
		}
	}

	archivePath := filepath.Join(ze.cfg.WorkDir, fmt.Sprintf("%s_%s.zip", sanitizeSegment(task.Dataset.Name), task.ID))
	if err := os.MkdirAll(ze.cfg.WorkDir, 0o755); err != nil {
		return "", 0, err
	}
	if err := util.ZipDir(stagingDir, archivePath); err != nil {
		return "", 0, err
	}

	return archivePath, len(files), nil
}

// parseFileTypes reads the task's JSON file-type filter. Empty input or an
// "all" element disables type filtering.
func parseFileTypes(raw []byte) ([]constant.ExportFileType, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var types []constant.ExportFileType
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, fmt.Errorf("invalid file type filter: %w", err)
	}

	for _, t := range types {
		if t == constant.ExportFileTypeAll {
			return nil, nil
		}
	}
	return types, nil
}

// ClassifyFile sorts an attachment into image or document by content type.
func ClassifyFile(file model.EntryFile) constant.ExportFileType {
	if util.IsImageContentType(file.ContentType) {
		return constant.ExportFileTypeImage
	}
	return constant.ExportFileTypeDocument
}

// FilterFiles applies the type and upload-date filters of an export task.
func FilterFiles(files []repository.ExportFile, types []constant.ExportFileType, from, to *time.Time) []repository.ExportFile {
	kept := make([]repository.ExportFile, 0, len(files))
	for _, file := range files {
		if len(types) > 0 && !containsType(types, ClassifyFile(file.EntryFile)) {
			continue
		}
		if file.CreatedAt != nil {
			if from != nil && file.CreatedAt.Before(*from) {
				continue
			}
			if to != nil && file.CreatedAt.After(*to) {
				continue
			}
		}
		kept = append(kept, file)
	}
	return kept
}

func containsType(types []constant.ExportFileType, t constant.ExportFileType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// ArchivePath places a file inside the archive according to the organize
// strategy. The base name keeps the original upload name.
func ArchivePath(file repository.ExportFile, organizeBy constant.OrganizeBy) string {
	name := file.ToBaseFilename()

	switch organizeBy {
	case constant.OrganizeByEntry:
		return filepath.Join(sanitizeSegment(file.IDKurz+"_"+file.EntryName), name)
	case constant.OrganizeByDate:
		if file.CreatedAt != nil {
			return filepath.Join(file.CreatedAt.Format("2006-01-02"), name)
		}
		return filepath.Join("undated", name)
	case constant.OrganizeByUser:
		return filepath.Join(sanitizeSegment(file.UploaderEmail), name)
	case constant.OrganizeByType:
		if ClassifyFile(file.EntryFile) == constant.ExportFileTypeImage {
			return filepath.Join("images", name)
		}
		return filepath.Join("documents", name)
	default:
		return filepath.Join(sanitizeSegment(file.IDKurz), name)
	}
}

// archivePaths resolves the archive path of every file and suffixes later
// duplicates so uploads sharing a name in the same folder cannot clobber
// each other.
func archivePaths(files []repository.ExportFile, organizeBy constant.OrganizeBy) []string {
	paths := make([]string, len(files))
	seen := make(map[string]int)

	for i, file := range files {
		path := ArchivePath(file, organizeBy)
		n := seen[path]
		seen[path] = n + 1
		if n > 0 {
			base, ext := util.SplitFileName(path)
			path = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		paths[i] = path
	}

	return paths
}

var segmentReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")

func sanitizeSegment(segment string) string {
	cleaned := segmentReplacer.Replace(strings.TrimSpace(segment))
	if cleaned == "" {
		return "unnamed"
	}
	return cleaned
}

// Stats summarizes the exported file set for the metadata bundle.
type Stats struct {
	TotalFiles int            `json:"totalFiles"`
	TotalSize  int64          `json:"totalSize"`
	ByType     map[string]int `json:"byType"`
	ByUser     map[string]int `json:"byUser"`
	ByGeometry map[string]int `json:"byGeometry"`
	OldestFile *time.Time     `json:"oldestFile"`
	NewestFile *time.Time     `json:"newestFile"`
}

func BuildStats(files []repository.ExportFile) Stats {
	stats := Stats{
		ByType:     make(map[string]int),
		ByUser:     make(map[string]int),
		ByGeometry: make(map[string]int),
	}

	for _, file := range files {
		stats.TotalFiles++
		stats.TotalSize += file.Size
		stats.ByType[string(ClassifyFile(file.EntryFile))]++
		stats.ByUser[file.UploaderEmail]++
		stats.ByGeometry[file.IDKurz]++

		if file.CreatedAt != nil {
			if stats.OldestFile == nil || file.CreatedAt.Before(*stats.OldestFile) {
				t := *file.CreatedAt
				stats.OldestFile = &t
			}
			if stats.NewestFile == nil || file.CreatedAt.After(*stats.NewestFile) {
				t := *file.CreatedAt
				stats.NewestFile = &t
			}
		}
	}

	return stats
}

type manifestEntry struct {
	Path        string `json:"path"`
	FileName    string `json:"fileName"`
	IDKurz      string `json:"idKurz"`
	EntryName   string `json:"entryName"`
	Uploader    string `json:"uploader"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	UploadedAt  string `json:"uploadedAt"`
}

func (ze *ZipExporter) writeMetadata(stagingDir string, task *model.ExportTask, files []repository.ExportFile, paths []string) error {
	entries := make([]manifestEntry, 0, len(files))
	for i, file := range files {
		uploadedAt := ""
		if file.CreatedAt != nil {
			uploadedAt = file.CreatedAt.Format(time.RFC3339)
		}
		entries = append(entries, manifestEntry{
			Path:        paths[i],
			FileName:    file.FileName,
			IDKurz:      file.IDKurz,
			EntryName:   file.EntryName,
			Uploader:    file.UploaderEmail,
			ContentType: file.ContentType,
			Size:        file.Size,
			UploadedAt:  uploadedAt,
		})
	}

	manifestJSON, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(stagingDir, "files_manifest.json"), manifestJSON, 0o644); err != nil {
		return err
	}

	if err := writeManifestCSV(filepath.Join(stagingDir, "files_manifest.csv"), entries); err != nil {
		return err
	}

	stats := BuildStats(files)
	summary := map[string]any{
		"dataset":    task.Dataset.Name,
		"datasetId":  task.DatasetID,
		"taskId":     task.ID,
		"organizeBy": task.OrganizeBy,
		"statistics": stats,
	}
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(stagingDir, "dataset_summary.json"), summaryJSON, 0o644); err != nil {
		return err
	}

	readme := fmt.Sprintf(
		"# Export of %s\n\nGenerated %s.\n\n%d files, %d bytes total, organized by %s.\n\nSee files_manifest.csv for the full file list and dataset_summary.json for statistics.\n",
		task.Dataset.Name,
		time.Now().Format("2006-01-02 15:04"),
		stats.TotalFiles,
		stats.TotalSize,
		task.OrganizeBy,
	)
	return os.WriteFile(filepath.Join(stagingDir, "README.md"), []byte(readme), 0o644)
}

func writeManifestCSV(path string, entries []manifestEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"path", "file_name", "id_kurz", "entry_name", "uploader", "content_type", "size", "uploaded_at"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writer.Write([]string{
			e.Path, e.FileName, e.IDKurz, e.EntryName, e.Uploader, e.ContentType,
			fmt.Sprintf("%d", e.Size), e.UploadedAt,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

type exportMailVars struct {
	Username     string
	DatasetName  string
	FileCount    int
	ArchiveSize  string
	DownloadURL  string
	ErrorMessage string
}

func (ze *ZipExporter) notifySuccess(task *model.ExportTask, archiveName string, fileCount int, size int64) {
	if ze.mail == nil {
		return
	}

	vars := exportMailVars{
		Username:    task.RequestedBy.Username,
		DatasetName: task.Dataset.Name,
		FileCount:   fileCount,
		ArchiveSize: formatSize(size),
		DownloadURL: strings.TrimRight(ze.cfg.DownloadBaseURL, "/") + "/" + archiveName,
	}
	if _, err := ze.mail.Send(mailer.EXPORT_COMPLETED_TEMPLATE, task.RequestedBy.Email, vars); err != nil {
		ze.logger.Errorf("Failed to send export completion mail for task %s: %v", task.ID, err)
	}
}

func (ze *ZipExporter) notifyFailure(task *model.ExportTask, cause error) {
	if ze.mail == nil {
		return
	}

	vars := exportMailVars{
		Username:     task.RequestedBy.Username,
		DatasetName:  task.Dataset.Name,
		ErrorMessage: cause.Error(),
	}
	if _, err := ze.mail.Send(mailer.EXPORT_FAILED_TEMPLATE, task.RequestedBy.Email, vars); err != nil {
		ze.logger.Errorf("Failed to send export failure mail for task %s: %v", task.ID, err)
	}
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMG"[exp])
}
