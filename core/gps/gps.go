// Package gps reads, writes, and converts GPS metadata in image files.
// Coordinates are stored in EXIF as degree/minute/second rationals with
// hemisphere reference bytes; this package does the conversion arithmetic
// and delegates the tag encoding to the EXIF library.
package gps

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"

	"github.com/khawarahemad/metadata-expert/core"
)

// gpsIFDPointer is the IFD0 tag holding the offset of the GPS sub-IFD.
const gpsIFDPointer = 0x8825

// DMS is a degrees-minutes-seconds angular value. Degrees and minutes are
// whole; seconds carry the fraction.
type DMS struct {
	Degrees int
	Minutes int
	Seconds float64
}

// Decimal converts a DMS value to decimal degrees.
func (d DMS) Decimal() float64 {
	return float64(d.Degrees) + float64(d.Minutes)/60 + d.Seconds/3600
}

// ToDMS converts an absolute decimal-degree value to DMS. Seconds are
// truncated to two decimals, matching the (sec×100)/100 rational encoding,
// so a round trip loses up to ~0.01 seconds of arc.
func ToDMS(decimal float64) DMS {
	decimal = math.Abs(decimal)
	degrees := int(decimal)
	minutes := int((decimal - float64(degrees)) * 60)
	seconds := ((decimal-float64(degrees))*60 - float64(minutes)) * 60
	seconds = float64(int(seconds*100)) / 100
	return DMS{Degrees: degrees, Minutes: minutes, Seconds: seconds}
}

// FromRationals converts three numerator/denominator pairs to decimal
// degrees. Zero denominators yield zero components.
func FromRationals(pairs [3][2]int64) float64 {
	part := func(i int, scale float64) float64 {
		if pairs[i][1] == 0 {
			return 0
		}
		return float64(pairs[i][0]) / float64(pairs[i][1]) / scale
	}
	return part(0, 1) + part(1, 60) + part(2, 3600)
}

// ApplyRef negates value when the hemisphere reference is South or West.
func ApplyRef(value float64, ref string) float64 {
	if ref == "S" || ref == "W" {
		return -value
	}
	return value
}

// altitudeRationals encodes an altitude as its magnitude rational plus the
// ref byte: 0 above sea level, 1 below.
func altitudeRationals(altitude float64) ([]exifcommon.Rational, byte) {
	ref := byte(0)
	if altitude < 0 {
		ref = 1
	}
	value := []exifcommon.Rational{
		{Numerator: uint32(math.Abs(altitude) * 100), Denominator: 100},
	}
	return value, ref
}

func (d DMS) rationals() []exifcommon.Rational {
	return []exifcommon.Rational{
		{Numerator: uint32(d.Degrees), Denominator: 1},
		{Numerator: uint32(d.Minutes), Denominator: 1},
		{Numerator: uint32(d.Seconds * 100), Denominator: 100},
	}
}

// Coordinates extracts the GPS position from an image, or reports that
// none is present.
func Coordinates(path string) (*core.GPSCoordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract gps: %w", err)
	}
	defer f.Close()

	x, err := goexif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("extract gps: %w", err)
	}

	lat, err := readDMSTag(x, goexif.GPSLatitude)
	if err != nil {
		return nil, nil
	}
	lon, err := readDMSTag(x, goexif.GPSLongitude)
	if err != nil {
		return nil, nil
	}

	return &core.GPSCoordinate{
		Latitude:  ApplyRef(lat, readRefTag(x, goexif.GPSLatitudeRef)),
		Longitude: ApplyRef(lon, readRefTag(x, goexif.GPSLongitudeRef)),
	}, nil
}

func readDMSTag(x *goexif.Exif, name goexif.FieldName) (float64, error) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, err
	}
	var pairs [3][2]int64
	for i := 0; i < 3; i++ {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return 0, err
		}
		pairs[i] = [2]int64{num, den}
	}
	return FromRationals(pairs), nil
}

func readRefTag(x *goexif.Exif, name goexif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	ref, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return ref
}

// Altitude extracts the GPS altitude in meters, if present.
func Altitude(path string) (float64, bool) {
	f, err := os.Open(path)
	if err != nil {
		logrus.Warnf("extract altitude: %v", err)
		return 0, false
	}
	defer f.Close()

	x, err := goexif.Decode(f)
	if err != nil {
		return 0, false
	}
	tag, err := x.Get(goexif.GPSAltitude)
	if err != nil {
		return 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0, false
	}
	alt := float64(num) / float64(den)

	// Ref byte 1 marks an altitude below sea level.
	if refTag, err := x.Get(goexif.GPSAltitudeRef); err == nil {
		if ref, err := refTag.Int(0); err == nil && ref == 1 {
			alt = -alt
		}
	}
	return alt, true
}

// SetCoordinates writes a GPS position (and optional altitude, pass NaN to
// skip) into the image's GPS IFD and re-saves the file.
func SetCoordinates(path string, latitude, longitude, altitude float64) error {
	mp := jpegstructure.NewJpegMediaParser()
	intfc, err := mp.ParseFile(path)
	if err != nil {
		return fmt.Errorf("set gps: parse %s: %w", filepath.Base(path), err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		return fmt.Errorf("set gps: %w", err)
	}

	gpsIb, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD/GPSInfo")
	if err != nil {
		return fmt.Errorf("set gps: %w", err)
	}

	latRef := "N"
	if latitude < 0 {
		latRef = "S"
	}
	lonRef := "E"
	if longitude < 0 {
		lonRef = "W"
	}

	set := func(name string, value interface{}) error {
		return gpsIb.SetStandardWithName(name, value)
	}
	if err := set("GPSLatitude", ToDMS(latitude).rationals()); err != nil {
		return fmt.Errorf("set gps latitude: %w", err)
	}
	if err := set("GPSLatitudeRef", latRef); err != nil {
		return fmt.Errorf("set gps latitude ref: %w", err)
	}
	if err := set("GPSLongitude", ToDMS(longitude).rationals()); err != nil {
		return fmt.Errorf("set gps longitude: %w", err)
	}
	if err := set("GPSLongitudeRef", lonRef); err != nil {
		return fmt.Errorf("set gps longitude ref: %w", err)
	}
	if !math.IsNaN(altitude) {
		alt, altRef := altitudeRationals(altitude)
		if err := set("GPSAltitude", alt); err != nil {
			return fmt.Errorf("set gps altitude: %w", err)
		}
		if err := set("GPSAltitudeRef", []byte{altRef}); err != nil {
			return fmt.Errorf("set gps altitude ref: %w", err)
		}
	}

	if err := sl.SetExif(rootIb); err != nil {
		return fmt.Errorf("set gps: %w", err)
	}
	return writeJPEG(path, sl)
}

// RemoveGPS deletes the GPS sub-IFD pointer from the image and re-saves.
func RemoveGPS(path string) error {
	mp := jpegstructure.NewJpegMediaParser()
	intfc, err := mp.ParseFile(path)
	if err != nil {
		return fmt.Errorf("remove gps: parse %s: %w", filepath.Base(path), err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		// No EXIF means no GPS to remove.
		return nil
	}

	if _, err := rootIb.DeleteAll(gpsIFDPointer); err != nil {
		logrus.Debugf("no GPS pointer in %s: %v", filepath.Base(path), err)
	}

	if err := sl.SetExif(rootIb); err != nil {
		return fmt.Errorf("remove gps: %w", err)
	}
	return writeJPEG(path, sl)
}

func writeJPEG(path string, sl *jpegstructure.SegmentList) error {
	b := new(bytes.Buffer)
	if err := sl.Write(b); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Info bundles everything the GUI shows about a file's GPS data.
type Info struct {
	HasGPS       bool
	Coordinate   *core.GPSCoordinate
	Altitude     float64
	HasAltitude  bool
	LocationName string
	MapURL       string
}

// InfoFor collects the complete GPS information for an image.
func InfoFor(path string) Info {
	info := Info{}

	coord, err := Coordinates(path)
	if err != nil {
		logrus.Debugf("gps info for %s: %v", filepath.Base(path), err)
		return info
	}
	if coord == nil {
		return info
	}

	info.HasGPS = true
	info.Coordinate = coord
	info.Altitude, info.HasAltitude = Altitude(path)
	info.LocationName = ReverseGeocode(coord.Latitude, coord.Longitude)
	info.MapURL = fmt.Sprintf("https://www.google.com/maps?q=%.6f,%.6f",
		coord.Latitude, coord.Longitude)
	return info
}

// GroupByLocation buckets images by their resolved location name. Images
// without GPS data are skipped.
func GroupByLocation(paths []string) map[string][]string {
	groups := make(map[string][]string)
	for _, path := range paths {
		coord, err := Coordinates(path)
		if err != nil || coord == nil {
			continue
		}
		name := ReverseGeocode(coord.Latitude, coord.Longitude)
		groups[name] = append(groups[name], path)
	}
	return groups
}
