package models

// WorkbookInfo is the payload of a "w" record, emitted once per opened file.
type WorkbookInfo struct {
	// File is the path of the workbook as it was matched on the command line.
	File string `json:"file"`
	// Sheets lists the sheet names in workbook order.
	Sheets []string `json:"sheets"`
	// User is the last author recorded in the document properties.
	User string `json:"user"`
}

// WorkbookOptions is the argument of the create_workbook command.
type WorkbookOptions struct {
	// DefaultDateFormat is the number format applied to date cells written
	// without an explicit number format.
	DefaultDateFormat string `json:"defaultDateFormat,omitempty"`
	// Properties are the document properties stored in the new file.
	Properties *Properties `json:"properties,omitempty"`
}

// Properties are the document properties of a workbook.
type Properties struct {
	Title    string `json:"title,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Author   string `json:"author,omitempty"`
	Manager  string `json:"manager,omitempty"`
	Company  string `json:"company,omitempty"`
	Category string `json:"category,omitempty"`
	Keywords string `json:"keywords,omitempty"`
	Comments string `json:"comments,omitempty"`
	Status   string `json:"status,omitempty"`
}
