package constant

// DatasetRole describes what a user may do with a dataset. Owner covers all
// mutations, editor is a shared user or group member, viewer only sees
// public datasets.
type DatasetRole int

const (
	DatasetRoleOwner DatasetRole = iota
	DatasetRoleEditor
	DatasetRoleViewer
	DatasetRoleNone
)

// ExportTaskStatus is the lifecycle of a ZIP export. Completed and failed
// are terminal.
type ExportTaskStatus string

const (
	ExportTaskStatusPending    ExportTaskStatus = "pending"
	ExportTaskStatusProcessing ExportTaskStatus = "processing"
	ExportTaskStatusCompleted  ExportTaskStatus = "completed"
	ExportTaskStatusFailed     ExportTaskStatus = "failed"
)

// OrganizeBy selects the per-file name prefix strategy inside ZIP exports.
type OrganizeBy string

const (
	OrganizeByGeometry OrganizeBy = "geometry"
	OrganizeByEntry    OrganizeBy = "entry"
	OrganizeByDate     OrganizeBy = "date"
	OrganizeByUser     OrganizeBy = "user"
	OrganizeByType     OrganizeBy = "type"
)

func (o OrganizeBy) Valid() bool {
	switch o {
	case OrganizeByGeometry, OrganizeByEntry, OrganizeByDate, OrganizeByUser, OrganizeByType:
		return true
	}
	return false
}

// ExportFileType filters which attachment kinds a ZIP export includes.
type ExportFileType string

const (
	ExportFileTypeAll      ExportFileType = "all"
	ExportFileTypeImage    ExportFileType = "image"
	ExportFileTypeDocument ExportFileType = "document"
)
