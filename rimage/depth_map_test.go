package rimage

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"go.viam.com/test"
)

func makeTestDepthMap() *DepthMap {
	dm := NewEmptyDepthMap(5, 3)
	for y := 0; y < dm.Height(); y++ {
		for x := 0; x < dm.Width(); x++ {
			dm.Set(x, y, Depth(1000+100*y+x))
		}
	}
	dm.Set(2, 1, 0)
	return dm
}

func TestDepthMapBasics(t *testing.T) {
	dm := makeTestDepthMap()
	test.That(t, dm.HasData(), test.ShouldBeTrue)
	test.That(t, dm.Bounds(), test.ShouldResemble, image.Rect(0, 0, 5, 3))
	test.That(t, dm.GetDepth(4, 2), test.ShouldEqual, Depth(1204))
	test.That(t, dm.At(4, 2), test.ShouldResemble, color.Gray16{Y: 1204})
	test.That(t, dm.At(5, 2), test.ShouldResemble, color.Gray16{})
	test.That(t, dm.Contains(4, 2), test.ShouldBeTrue)
	test.That(t, dm.Contains(-1, 0), test.ShouldBeFalse)
	test.That(t, dm.Data(), test.ShouldHaveLength, 15)

	minDepth, maxDepth := dm.MinMax()
	test.That(t, minDepth, test.ShouldEqual, Depth(1000))
	test.That(t, maxDepth, test.ShouldEqual, Depth(1204))
	test.That(t, dm.ValidCount(), test.ShouldEqual, 14)

	clone := dm.Clone()
	clone.Set(0, 0, 7)
	test.That(t, dm.GetDepth(0, 0), test.ShouldEqual, Depth(1000))

	empty := NewEmptyDepthMap(4, 4)
	test.That(t, empty.ValidCount(), test.ShouldEqual, 0)
	minDepth, maxDepth = empty.MinMax()
	test.That(t, minDepth, test.ShouldEqual, Depth(0))
	test.That(t, maxDepth, test.ShouldEqual, Depth(0))
	test.That(t, NewEmptyDepthMap(0, 3).HasData(), test.ShouldBeFalse)

	_, err := NewDepthMapFromData(2, 2, make([]Depth, 3))
	test.That(t, err, test.ShouldNotBeNil)
	wrapped, err := NewDepthMapFromData(2, 2, []Depth{1, 2, 3, 4})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, wrapped.GetDepth(1, 1), test.ShouldEqual, Depth(4))
}

func TestConvertImageToDepthMap(t *testing.T) {
	dm := makeTestDepthMap()
	same, err := ConvertImageToDepthMap(dm)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, same, test.ShouldEqual, dm)

	fromGray16, err := ConvertImageToDepthMap(dm.ToGray16Picture())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromGray16, test.ShouldResemble, dm)

	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.Pix[0], gray.Pix[1] = 3, 250
	fromGray, err := ConvertImageToDepthMap(gray)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromGray.Data(), test.ShouldResemble, []Depth{3, 250})

	_, err = ConvertImageToDepthMap(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPixelFormat(t *testing.T) {
	test.That(t, FormatOf(image.NewGray(image.Rect(0, 0, 1, 1))), test.ShouldEqual, PixelFormatGray8)
	test.That(t, FormatOf(image.NewGray16(image.Rect(0, 0, 1, 1))), test.ShouldEqual, PixelFormatGray16)
	test.That(t, FormatOf(NewEmptyDepthMap(1, 1)), test.ShouldEqual, PixelFormatGray16)
	test.That(t, FormatOf(image.NewRGBA(image.Rect(0, 0, 1, 1))), test.ShouldEqual, PixelFormatUnknown)
	test.That(t, PixelFormatGray16.String(), test.ShouldEqual, "gray16")
	test.That(t, PixelFormatGray8.BitsPerSample(), test.ShouldEqual, 8)
	test.That(t, PixelFormatUnknown.BitsPerSample(), test.ShouldEqual, 0)
}

func TestRawDepthMapRoundTrip(t *testing.T) {
	dm := makeTestDepthMap()
	var buf bytes.Buffer
	n, err := dm.WriteTo(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, int64(8+16+2*15))
	test.That(t, int64(buf.Len()), test.ShouldEqual, n)

	read, err := ReadDepthMap(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read, test.ShouldResemble, dm)

	_, err = ReadDepthMap(bytes.NewReader([]byte("NOTDEPTH")))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "magic")

	var truncated bytes.Buffer
	_, err = dm.WriteTo(&truncated)
	test.That(t, err, test.ShouldBeNil)
	_, err = ReadDepthMap(bytes.NewReader(truncated.Bytes()[:truncated.Len()-3]))
	test.That(t, err, test.ShouldNotBeNil)

	var zeroSized bytes.Buffer
	_, err = NewEmptyDepthMap(0, 4).WriteTo(&zeroSized)
	test.That(t, err, test.ShouldBeNil)
	_, err = ReadDepthMap(&zeroSized)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "bad width or height")
}

func TestRawDepthMapHeaderLargerThanData(t *testing.T) {
	var header bytes.Buffer
	header.Write(depthMapMagic[:])
	test.That(t, binary.Write(&header, binary.LittleEndian, [2]uint64{20000, 20000}), test.ShouldBeNil)
	test.That(t, header.Len(), test.ShouldEqual, 24)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := ReadDepthMap(bytes.NewReader(header.Bytes()))
	runtime.ReadMemStats(&after)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "samples")
	test.That(t, after.TotalAlloc-before.TotalAlloc, test.ShouldBeLessThan, uint64(8<<20))
}

func TestRawDepthMapSpanningChunks(t *testing.T) {
	dm := NewEmptyDepthMap(300, 250)
	for i := range dm.Data() {
		dm.Data()[i] = Depth(i % 5000)
	}
	var buf bytes.Buffer
	_, err := dm.WriteTo(&buf)
	test.That(t, err, test.ShouldBeNil)

	read, err := ReadDepthMap(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read, test.ShouldResemble, dm)
}

func TestDepthFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dm := makeTestDepthMap()

	for _, name := range []string{"depth.dat", "depth.dat.gz", "depth.png", "depth.tif", "DEPTH.TIFF"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			test.That(t, WriteDepthFile(path, dm), test.ShouldBeNil)
			read, err := ReadDepthFile(path)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, read, test.ShouldResemble, dm)
		})
	}
}

func TestDepthFileKeepsEightBit(t *testing.T) {
	dir := t.TempDir()
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(gray.Pix, []uint8{0, 5, 10, 15, 20, 255})

	for _, name := range []string{"gray.png", "gray.tiff"} {
		path := filepath.Join(dir, name)
		test.That(t, WriteDepthFile(path, gray), test.ShouldBeNil)
		read, err := ReadDepthFile(path)
		test.That(t, err, test.ShouldBeNil)
		readGray, ok := read.(*image.Gray)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, readGray.Pix, test.ShouldResemble, gray.Pix)
	}

	// raw files are always 16-bit.
	path := filepath.Join(dir, "gray.dat")
	test.That(t, WriteDepthFile(path, gray), test.ShouldBeNil)
	read, err := ReadDepthFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, FormatOf(read), test.ShouldEqual, PixelFormatGray16)
}

func TestDepthFileErrors(t *testing.T) {
	dir := t.TempDir()
	err := WriteDepthFile(filepath.Join(dir, "depth.jpg"), makeTestDepthMap())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown depth file extension")

	err = WriteDepthFile(filepath.Join(dir, "color.png"), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	test.That(t, err, test.ShouldNotBeNil)

	// a failed encode leaves no partial file behind.
	empty := filepath.Join(dir, "empty.png")
	err = WriteDepthFile(empty, image.NewGray16(image.Rect(0, 0, 0, 0)))
	test.That(t, err, test.ShouldNotBeNil)
	_, statErr := os.Stat(empty)
	test.That(t, os.IsNotExist(statErr), test.ShouldBeTrue)

	_, err = ReadDepthFile(filepath.Join(dir, "missing.png"))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = ReadDepthFile(filepath.Join(dir, "depth.bmp"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSplitDepthExt(t *testing.T) {
	stem, ext := SplitDepthExt("/data/frame_001.dat.gz")
	test.That(t, stem, test.ShouldEqual, "/data/frame_001")
	test.That(t, ext, test.ShouldEqual, ".dat.gz")

	stem, ext = SplitDepthExt("frame.png")
	test.That(t, stem, test.ShouldEqual, "frame")
	test.That(t, ext, test.ShouldEqual, ".png")

	test.That(t, FileFormatFromPath("a.DAT"), test.ShouldEqual, FileFormatRaw)
	test.That(t, FileFormatFromPath("a.jpeg"), test.ShouldEqual, FileFormatUnknown)
}
