package document

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// encodePDF wraps rasterized pages in a minimal PDF container, one
// full-bleed JPEG XObject per page.
func encodePDF(pages []image.Image) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to encode")
	}

	var buf bytes.Buffer
	offsets := []int{0} // object numbers are 1-based

	writeObject := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")

	// Object layout: 1 catalog, 2 page tree, then (page, contents, image)
	// triples.
	pageObj := func(i int) int { return 3 + 3*i }
	contentObj := func(i int) int { return 4 + 3*i }
	imageObj := func(i int) int { return 5 + 3*i }

	writeObject("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := ""
	for i := range pages {
		if i > 0 {
			kids += " "
		}
		kids += fmt.Sprintf("%d 0 R", pageObj(i))
	}
	writeObject(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kids, len(pages)))

	for i, img := range pages {
		var jpg bytes.Buffer
		if err := jpeg.Encode(&jpg, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}
		bounds := img.Bounds()

		writeObject(fmt.Sprintf(
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.0f %.0f] /Contents %d 0 R /Resources << /XObject << /Im%d %d 0 R >> >> >>\nendobj\n",
			pageObj(i), PageWidth, PageHeight, contentObj(i), i, imageObj(i),
		))

		content := fmt.Sprintf("q %.0f 0 0 %.0f 0 0 cm /Im%d Do Q", PageWidth, PageHeight, i)
		writeObject(fmt.Sprintf(
			"%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			contentObj(i), len(content), content,
		))

		offsets = append(offsets, buf.Len())
		buf.WriteString(fmt.Sprintf(
			"%d 0 obj\n<< /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode /Length %d >>\nstream\n",
			imageObj(i), bounds.Dx(), bounds.Dy(), jpg.Len(),
		))
		buf.Write(jpg.Bytes())
		buf.WriteString("\nendstream\nendobj\n")
	}

	objCount := len(offsets) - 1
	xrefStart := buf.Len()
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n0000000000 65535 f \n", objCount+1))
	for _, off := range offsets[1:] {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString(fmt.Sprintf(
		"trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		objCount+1, xrefStart,
	))

	return buf.Bytes(), nil
}
