// Metadata Expert is a desktop viewer and editor for image EXIF/GPS
// metadata. The GUI talks to the core packages only through their
// exported APIs; all file handling lives outside this package.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"github.com/khawarahemad/metadata-expert/core"
	"github.com/khawarahemad/metadata-expert/core/editor"
	"github.com/khawarahemad/metadata-expert/core/tags"
)

type viewerApp struct {
	app      fyne.App
	win      fyne.Window
	accessor core.Accessor
	tagStore *tags.Store

	files   []string
	current string

	list     *widget.List
	preview  *canvas.Image
	metaView *widget.Entry
	tagLabel *widget.Label
}

func main() {
	logrus.SetLevel(logrus.InfoLevel)

	v := &viewerApp{
		app:      app.New(),
		accessor: editor.Accessor{},
	}
	v.win = v.app.NewWindow("Metadata Expert")
	v.win.Resize(fyne.NewSize(1200, 800))

	store, err := tags.Open("")
	if err != nil {
		logrus.Warnf("tag store unavailable: %v", err)
	}
	v.tagStore = store

	v.buildUI()
	v.win.Show()
	v.showOpenFolder()
	v.app.Run()
}

func (v *viewerApp) buildUI() {
	v.metaView = widget.NewMultiLineEntry()
	v.metaView.Wrapping = fyne.TextWrapWord
	v.metaView.SetPlaceHolder("Select an image to view its metadata...")

	v.preview = canvas.NewImageFromResource(nil)
	v.preview.FillMode = canvas.ImageFillContain

	v.tagLabel = widget.NewLabel("")
	v.tagLabel.Wrapping = fyne.TextWrapWord

	v.list = widget.NewList(
		func() int { return len(v.files) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(filepath.Base(v.files[id]))
		},
	)
	v.list.OnSelected = func(id widget.ListItemID) {
		if id < 0 || id >= len(v.files) {
			return
		}
		v.loadFile(v.files[id])
	}

	openButton := widget.NewButton("Open Folder", v.showOpenFolder)
	leftPanel := container.NewBorder(openButton, nil, nil, nil, v.list)

	toolbar := container.NewHBox(
		widget.NewButton("Edit", v.showEditDialog),
		widget.NewButton("GPS", v.showGPSDialog),
		widget.NewButton("Privacy", v.showPrivacyDialog),
		widget.NewButton("Tags", v.showTagsDialog),
		widget.NewButton("Image Ops", v.showImageOpsDialog),
		widget.NewButton("Export", v.showExportDialog),
		widget.NewButton("Backup", v.doBackup),
		widget.NewButton("Restore", v.doRestore),
	)

	rightPanel := container.NewBorder(toolbar, v.tagLabel, nil, nil, v.metaView)

	centerSplit := container.NewHSplit(container.NewStack(v.preview), rightPanel)
	centerSplit.SetOffset(0.45)

	mainSplit := container.NewHSplit(leftPanel, centerSplit)
	mainSplit.SetOffset(0.2)

	v.win.SetContent(mainSplit)
}

func (v *viewerApp) showOpenFolder() {
	folderDialog := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		v.loadDirectory(uri.Path())
	}, v.win)
	folderDialog.Resize(fyne.NewSize(800, 600))
	folderDialog.Show()
}

func (v *viewerApp) loadDirectory(dir string) {
	v.files = nil
	entries, err := os.ReadDir(dir)
	if err != nil {
		dialog.ShowError(fmt.Errorf("could not read folder: %w", err), v.win)
		return
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)
		if core.IsSupportedImage(full) {
			v.files = append(v.files, full)
		}
	}
	sort.Strings(v.files)
	v.list.Refresh()
	if len(v.files) > 0 {
		v.list.Select(0)
	} else {
		v.current = ""
		v.preview.File = ""
		v.preview.Refresh()
		v.metaView.SetText("")
	}
}

func (v *viewerApp) loadFile(path string) {
	v.current = path

	v.preview.File = path
	v.preview.Refresh()

	m, err := v.accessor.Read(path)
	if err != nil {
		v.metaView.SetText(fmt.Sprintf("Could not read metadata: %v", err))
		return
	}
	v.metaView.SetText(renderMetadata(m))
	v.refreshTagLabel()
}

func (v *viewerApp) refreshTagLabel() {
	if v.tagStore == nil || v.current == "" {
		v.tagLabel.SetText("")
		return
	}
	tagList := v.tagStore.TagsFor(v.current)
	if len(tagList) == 0 {
		v.tagLabel.SetText("Tags: (none)")
		return
	}
	v.tagLabel.SetText("Tags: " + strings.Join(tagList, ", "))
}

func renderMetadata(m *core.Metadata) string {
	var b strings.Builder
	for _, section := range m.Sections() {
		fields := m.Section(section)
		if fields.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, "── %s ──\n", section)
		for _, key := range fields.Keys() {
			value, _ := fields.Get(key)
			fmt.Fprintf(&b, "  %-28s %s\n", key+":", value)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// requireSelection returns the selected file, showing a dialog when
// nothing is selected yet.
func (v *viewerApp) requireSelection() (string, bool) {
	if v.current == "" {
		dialog.ShowInformation("No image selected", "Open a folder and select an image first.", v.win)
		return "", false
	}
	return v.current, true
}

func (v *viewerApp) doBackup() {
	path, ok := v.requireSelection()
	if !ok {
		return
	}
	backupPath, err := v.accessor.Backup(path)
	if err != nil {
		dialog.ShowError(fmt.Errorf("backup failed: %w", err), v.win)
		return
	}
	dialog.ShowInformation("Backup created", "Saved to "+filepath.Base(backupPath), v.win)
}

func (v *viewerApp) doRestore() {
	path, ok := v.requireSelection()
	if !ok {
		return
	}
	ext := filepath.Ext(path)
	backupPath := strings.TrimSuffix(path, ext) + "_backup" + ext
	if _, err := os.Stat(backupPath); err != nil {
		dialog.ShowError(fmt.Errorf("no backup found for %s", filepath.Base(path)), v.win)
		return
	}
	dialog.ShowConfirm("Restore backup",
		"Overwrite "+filepath.Base(path)+" with its backup?",
		func(confirmed bool) {
			if !confirmed {
				return
			}
			if err := v.accessor.Restore(path, backupPath); err != nil {
				dialog.ShowError(fmt.Errorf("restore failed: %w", err), v.win)
				return
			}
			v.loadFile(path)
		}, v.win)
}
