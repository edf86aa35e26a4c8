package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/khawarahemad/metadata-expert/core/editor"
	"github.com/khawarahemad/metadata-expert/core/gps"
	"github.com/khawarahemad/metadata-expert/core/imaging"
	"github.com/khawarahemad/metadata-expert/core/parser"
	"github.com/khawarahemad/metadata-expert/core/privacy"
)

// editableOrder fixes the dialog layout; editor.EditableFields is a map
// with no stable order.
var editableOrder = []string{
	"ImageDescription", "Artist", "Copyright", "Make", "Model", "Software",
	"LensModel", "UserComment", "DateTime", "DateTimeOriginal", "DateTimeDigitized",
}

func (v *viewerApp) showEditDialog() {
	path, ok := v.requireSelection()
	if !ok {
		return
	}

	current := parser.ExifData(path)

	entries := make(map[string]*widget.Entry, len(editableOrder))
	items := make([]*widget.FormItem, 0, len(editableOrder))
	for _, name := range editableOrder {
		entry := widget.NewEntry()
		if value, ok := current.Get(name); ok {
			entry.SetText(value)
		}
		entries[name] = entry
		items = append(items, widget.NewFormItem(name, entry))
	}

	form := dialog.NewForm("Edit EXIF Metadata", "Save", "Cancel", items,
		func(confirmed bool) {
			if !confirmed {
				return
			}
			updates := make(map[string]string)
			for name, entry := range entries {
				old, _ := current.Get(name)
				if entry.Text != old && entry.Text != "" {
					updates[name] = entry.Text
				}
			}
			if len(updates) == 0 {
				return
			}
			if err := v.accessor.Write(path, updates); err != nil {
				dialog.ShowError(fmt.Errorf("could not save metadata: %w", err), v.win)
				return
			}
			v.loadFile(path)
		}, v.win)
	form.Resize(fyne.NewSize(500, 600))
	form.Show()
}

func (v *viewerApp) showGPSDialog() {
	path, ok := v.requireSelection()
	if !ok {
		return
	}

	info := gps.InfoFor(path)

	var summary strings.Builder
	if info.HasGPS {
		fmt.Fprintf(&summary, "Coordinates: %.6f, %.6f\n",
			info.Coordinate.Latitude, info.Coordinate.Longitude)
		if info.HasAltitude {
			fmt.Fprintf(&summary, "Altitude: %.1f m\n", info.Altitude)
		}
		fmt.Fprintf(&summary, "Location: %s\n", info.LocationName)
		fmt.Fprintf(&summary, "Map: %s\n", info.MapURL)
	} else {
		summary.WriteString("No GPS data present.\n")
	}

	latEntry := widget.NewEntry()
	lonEntry := widget.NewEntry()
	altEntry := widget.NewEntry()
	if info.HasGPS {
		latEntry.SetText(fmt.Sprintf("%.6f", info.Coordinate.Latitude))
		lonEntry.SetText(fmt.Sprintf("%.6f", info.Coordinate.Longitude))
	}

	items := []*widget.FormItem{
		widget.NewFormItem("", widget.NewLabel(summary.String())),
		widget.NewFormItem("Latitude", latEntry),
		widget.NewFormItem("Longitude", lonEntry),
		widget.NewFormItem("Altitude (m)", altEntry),
	}

	form := dialog.NewForm("GPS Location", "Set", "Close", items,
		func(confirmed bool) {
			if !confirmed {
				return
			}
			lat, errLat := strconv.ParseFloat(strings.TrimSpace(latEntry.Text), 64)
			lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonEntry.Text), 64)
			if errLat != nil || errLon != nil {
				dialog.ShowError(fmt.Errorf("latitude and longitude must be decimal degrees"), v.win)
				return
			}
			alt := math.NaN()
			if text := strings.TrimSpace(altEntry.Text); text != "" {
				if a, err := strconv.ParseFloat(text, 64); err == nil {
					alt = a
				}
			}
			if err := gps.SetCoordinates(path, lat, lon, alt); err != nil {
				dialog.ShowError(fmt.Errorf("could not set GPS data: %w", err), v.win)
				return
			}
			v.loadFile(path)
		}, v.win)
	form.Resize(fyne.NewSize(460, 400))
	form.Show()
}

func (v *viewerApp) showPrivacyDialog() {
	path, ok := v.requireSelection()
	if !ok {
		return
	}

	report := privacy.ReportFor(path)

	var b strings.Builder
	fmt.Fprintf(&b, "Risk level: %s (%d sensitive fields)\n\n", report.RiskLevel, report.FieldsFound)
	for _, category := range privacy.Categories() {
		entries := report.Details[category]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", category)
		for _, e := range entries {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}

	checks := make(map[string]*widget.Check)
	var checkItems []fyne.CanvasObject
	defaults := map[string]bool{
		privacy.CategoryGPS:      true,
		privacy.CategoryDateTime: true,
		privacy.CategoryPersonal: true,
	}
	for _, category := range privacy.Categories() {
		check := widget.NewCheck(category, nil)
		check.SetChecked(defaults[category])
		checks[category] = check
		checkItems = append(checkItems, check)
	}

	items := []*widget.FormItem{
		widget.NewFormItem("Report", widget.NewLabel(b.String())),
	}
	for _, obj := range checkItems {
		items = append(items, widget.NewFormItem("", obj))
	}

	form := dialog.NewForm("Privacy Mode", "Remove Selected", "Close", items,
		func(confirmed bool) {
			if !confirmed {
				return
			}
			var categories []string
			for category, check := range checks {
				if check.Checked {
					categories = append(categories, category)
				}
			}
			if len(categories) == 0 {
				return
			}
			if err := privacy.Apply(path, categories); err != nil {
				dialog.ShowError(fmt.Errorf("privacy mode failed: %w", err), v.win)
				return
			}
			v.loadFile(path)
		}, v.win)
	form.Resize(fyne.NewSize(520, 600))
	form.Show()
}

func (v *viewerApp) showTagsDialog() {
	path, ok := v.requireSelection()
	if !ok {
		return
	}
	if v.tagStore == nil {
		dialog.ShowError(fmt.Errorf("tag store is unavailable"), v.win)
		return
	}

	currentLabel := widget.NewLabel(strings.Join(v.tagStore.TagsFor(path), ", "))
	addEntry := widget.NewEntry()
	addEntry.SetPlaceHolder("new tag")
	removeEntry := widget.NewEntry()
	removeEntry.SetPlaceHolder("tag to remove")

	items := []*widget.FormItem{
		widget.NewFormItem("Current", currentLabel),
		widget.NewFormItem("Add", addEntry),
		widget.NewFormItem("Remove", removeEntry),
	}

	form := dialog.NewForm("Image Tags", "Apply", "Close", items,
		func(confirmed bool) {
			if !confirmed {
				return
			}
			if tag := strings.TrimSpace(addEntry.Text); tag != "" {
				v.tagStore.Tag(path, tag)
			}
			if tag := strings.TrimSpace(removeEntry.Text); tag != "" {
				v.tagStore.Untag(path, tag)
			}
			v.refreshTagLabel()
		}, v.win)
	form.Resize(fyne.NewSize(420, 300))
	form.Show()
}

func (v *viewerApp) showImageOpsDialog() {
	path, ok := v.requireSelection()
	if !ok {
		return
	}

	widthEntry := widget.NewEntry()
	widthEntry.SetPlaceHolder("width px")
	heightEntry := widget.NewEntry()
	heightEntry.SetPlaceHolder("height px")
	qualityEntry := widget.NewEntry()
	qualityEntry.SetText("85")
	formatSelect := widget.NewSelect([]string{"jpg", "png", "gif", "bmp", "tiff"}, nil)
	opSelect := widget.NewSelect([]string{"Resize", "Compress", "Convert", "Thumbnail"}, nil)
	opSelect.SetSelected("Resize")

	items := []*widget.FormItem{
		widget.NewFormItem("Operation", opSelect),
		widget.NewFormItem("Width", widthEntry),
		widget.NewFormItem("Height", heightEntry),
		widget.NewFormItem("Quality", qualityEntry),
		widget.NewFormItem("Format", formatSelect),
	}

	form := dialog.NewForm("Image Operations", "Run", "Close", items,
		func(confirmed bool) {
			if !confirmed {
				return
			}
			width, _ := strconv.Atoi(strings.TrimSpace(widthEntry.Text))
			height, _ := strconv.Atoi(strings.TrimSpace(heightEntry.Text))
			quality, _ := strconv.Atoi(strings.TrimSpace(qualityEntry.Text))

			var err error
			switch opSelect.Selected {
			case "Resize":
				err = imaging.Resize(path, width, height, true, "")
			case "Compress":
				err = imaging.Compress(path, quality, "")
			case "Convert":
				if formatSelect.Selected == "" {
					err = fmt.Errorf("choose a target format")
				} else {
					err = imaging.Convert(path, formatSelect.Selected, "")
				}
			case "Thumbnail":
				err = imaging.Thumbnail(path, width, height, "")
			}
			if err != nil {
				dialog.ShowError(fmt.Errorf("image operation failed: %w", err), v.win)
				return
			}
			v.loadFile(path)
		}, v.win)
	form.Resize(fyne.NewSize(420, 400))
	form.Show()
}

func (v *viewerApp) showExportDialog() {
	path, ok := v.requireSelection()
	if !ok {
		return
	}

	m, err := v.accessor.Read(path)
	if err != nil {
		dialog.ShowError(fmt.Errorf("could not read metadata: %w", err), v.win)
		return
	}

	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		dest := writer.URI().Path()
		writer.Close()
		if err := editor.ExportMetadata(m, dest); err != nil {
			dialog.ShowError(fmt.Errorf("export failed: %w", err), v.win)
			return
		}
		dialog.ShowInformation("Export complete", "Metadata written to "+dest, v.win)
	}, v.win)
	ext := filepath.Ext(m.FilePath)
	stem := strings.TrimSuffix(filepath.Base(m.FilePath), ext)
	saveDialog.SetFileName(stem + "_metadata.txt")
	saveDialog.Show()
}
