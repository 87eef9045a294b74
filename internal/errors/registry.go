package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/toolbox/errors/"

var registry = map[string]ErrorTemplate{
	// Configuration (T100-T109)

	"T100": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No toolbox.json was found in the directory or any of its parents.",
		DocURL:   docBase + "T100",
	},
	"T101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "toolbox.json could not be read or parsed.",
		DocURL:   docBase + "T101",
	},
	"T102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or inconsistent with another one.",
		DocURL:   docBase + "T102",
	},
	"T103": {
		Category: CategoryConfig,
		Message:  "Invalid asset manifest",
		Detail:   "The build manifest could not be read or is not a JSON object of strings.",
		DocURL:   docBase + "T103",
	},
	"T104": {
		Category: CategoryConfig,
		Message:  "Asset manifest not built",
		Detail:   "The asset directory could not be scanned or the manifest could not be written.",
		DocURL:   docBase + "T104",
	},

	// Resources and rendering (T110-T129)

	"T110": {
		Category: CategoryResource,
		Message:  "Unknown resource",
		Detail:   "A resource was enqueued that was never declared.",
		DocURL:   docBase + "T110",
	},
	"T111": {
		Category: CategoryResource,
		Message:  "Unsupported resource type",
		Detail:   "Only files ending in .js or .css can be declared as resources.",
		DocURL:   docBase + "T111",
	},
	"T120": {
		Category: CategoryRender,
		Message:  "Dependency cycle",
		Detail:   "Two or more enqueued resources depend on each other.",
		DocURL:   docBase + "T120",
	},
	"T121": {
		Category: CategoryRender,
		Message:  "Render failed",
		Detail:   "The resource tags could not be written.",
		DocURL:   docBase + "T121",
	},

	// Storage (T130-T139)

	"T130": {
		Category: CategoryStorage,
		Message:  "Asset storage unavailable",
		Detail:   "The object store holding the assets could not be reached.",
		DocURL:   docBase + "T130",
	},

	// CLI and server (T140-T149)

	"T140": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
		DocURL:   docBase + "T140",
	},
	"T141": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
		DocURL:   docBase + "T141",
	},
	"T142": {
		Category: CategoryCLI,
		Message:  "Project already initialized",
		Detail:   "A toolbox.json already exists in the target directory.",
		DocURL:   docBase + "T142",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
