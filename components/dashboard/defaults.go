package dashboard

const (
	colorBlue    = "#3B82F6"
	colorGray    = "#E5E7EB"
	colorRed     = "#EF4444"
	colorAmber   = "#F59E0B"
	colorSlate   = "#9CA3AF"
	colorGreen   = "#10B981"
	colorCrimson = "#DC2626"
	colorOrange  = "#EA580C"
	colorViolet  = "#8B5CF6"
	colorPink    = "#EC4899"

	noGraphData = "No Graph data available!"
)

// Default tab keys of the CNAPP catalog.
const (
	TabCSPM   = "CSPM"
	TabCWPP   = "CWPP"
	TabImage  = "Image"
	TabTicket = "Ticket"
)

// DefaultCategories returns the starter CNAPP dashboard.
func DefaultCategories() []Category {
	return []Category{
		{
			ID:          "cspm",
			DisplayName: "CSPM Executive Dashboard",
			Widgets: []Widget{
				donut("cloud-accounts", "Cloud Accounts", 2, true,
					Segment{Label: "Connected", Value: 2, Color: colorBlue},
					Segment{Label: "Not Connected", Value: 2, Color: colorGray},
				),
				donut("cloud-risk", "Cloud Account Risk Assessment", 9659, true,
					Segment{Label: "Failed", Value: 1689, Color: colorRed},
					Segment{Label: "Warning", Value: 681, Color: colorAmber},
					Segment{Label: "Not available", Value: 36, Color: colorSlate},
					Segment{Label: "Passed", Value: 7253, Color: colorGreen},
				),
			},
		},
		{
			ID:          "cwpp",
			DisplayName: "CWPP Dashboard",
			Widgets: []Widget{
				empty("top-alerts", "Top 5 Namespace Specific Alerts", true),
				empty("workload-alerts", "Workload Alerts", true),
			},
		},
		{
			ID:          "registry",
			DisplayName: "Registry Scan",
			Widgets: []Widget{
				progress("image-risk", "Image Risk Assessment", 1470, "Total Vulnerabilities", true,
					Segment{Label: "Critical", Value: 9, Color: colorCrimson},
					Segment{Label: "High", Value: 150, Color: colorOrange},
				),
				progress("image-security", "Image Security Issues", 2, "Total Images", true,
					Segment{Label: "Critical", Value: 2, Color: colorCrimson},
					Segment{Label: "High", Value: 2, Color: colorOrange},
				),
			},
		},
	}
}

// DefaultCatalogTabs returns the addable widget templates per tab.
func DefaultCatalogTabs() []CatalogTab {
	return []CatalogTab{
		{
			Key: TabCSPM,
			Widgets: []Widget{
				donut("cloud-compliance", "Cloud Compliance Status", 100, false,
					Segment{Label: "Compliant", Value: 75, Color: colorGreen},
					Segment{Label: "Non-Compliant", Value: 25, Color: colorRed},
				),
				donut("resource-inventory", "Resource Inventory", 100, false,
					Segment{Label: "EC2", Value: 40, Color: colorBlue},
					Segment{Label: "S3", Value: 30, Color: colorViolet},
					Segment{Label: "RDS", Value: 20, Color: colorAmber},
					Segment{Label: "Lambda", Value: 10, Color: colorPink},
				),
			},
		},
		{
			Key: TabCWPP,
			Widgets: []Widget{
				progress("container-security", "Container Security Posture", 100, "Security Score", false,
					Segment{Label: "Secure", Value: 85, Color: colorGreen},
					Segment{Label: "Needs Attention", Value: 15, Color: colorAmber},
				),
				empty("runtime-alerts", "Runtime Alerts Trend", false),
			},
		},
		{
			Key: TabImage,
			Widgets: []Widget{
				empty("vulnerability-trend", "Vulnerability Trend Over Time", false),
				donut("image-compliance", "Image Compliance Status", 100, false,
					Segment{Label: "Compliant", Value: 60, Color: colorGreen},
					Segment{Label: "Non-Compliant", Value: 40, Color: colorRed},
				),
			},
		},
		{
			Key: TabTicket,
			Widgets: []Widget{
				donut("ticket-status", "Ticket Status Overview", 100, false,
					Segment{Label: "Open", Value: 30, Color: colorBlue},
					Segment{Label: "In Progress", Value: 25, Color: colorAmber},
					Segment{Label: "Resolved", Value: 45, Color: colorGreen},
				),
				empty("ticket-trend", "Ticket Trend Analysis", false),
			},
		},
	}
}

// DefaultTabBindings maps the CNAPP tabs to their categories. Ticket has no
// category until one is created.
func DefaultTabBindings() []TabBinding {
	return []TabBinding{
		{Tab: TabCSPM, CategoryID: "cspm"},
		{Tab: TabCWPP, CategoryID: "cwpp"},
		{Tab: TabImage, CategoryID: "registry"},
		{Tab: TabTicket, DisplayName: "Ticket Dashboard"},
	}
}

// DefaultDocument bundles the starter dashboard, catalog and bindings.
func DefaultDocument() *DashboardDocument {
	doc := &DashboardDocument{
		Version:    DocumentVersion,
		Name:       "CNAPP Dashboard",
		DefaultTab: TabCSPM,
		Policy:     string(PolicyDrop),
		Categories: DefaultCategories(),
	}
	bindings := DefaultTabBindings()
	for i, tab := range DefaultCatalogTabs() {
		doc.Tabs = append(doc.Tabs, DocumentTab{
			Key:         tab.Key,
			CategoryID:  bindings[i].CategoryID,
			DisplayName: bindings[i].DisplayName,
			Widgets:     tab.Widgets,
		})
	}
	return doc
}

func donut(id, name string, total float64, active bool, segments ...Segment) Widget {
	return Widget{
		ID:      id,
		Name:    name,
		Kind:    VizDonut,
		Payload: VizPayload{Segments: segments, Total: total},
		Active:  active,
	}
}

func progress(id, name string, total float64, subtitle string, active bool, segments ...Segment) Widget {
	return Widget{
		ID:      id,
		Name:    name,
		Kind:    VizProgress,
		Payload: VizPayload{Segments: segments, Total: total, Subtitle: subtitle},
		Active:  active,
	}
}

func empty(id, name string, active bool) Widget {
	return Widget{
		ID:      id,
		Name:    name,
		Kind:    VizEmpty,
		Payload: VizPayload{PlaceholderText: noGraphData},
		Active:  active,
	}
}
