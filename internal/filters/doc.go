// Package filters undoes the PDF stream encodings that can sit in front of
// an embedded image codec, and decodes CCITT fax images.
//
// pdfcpu decodes ordinary streams itself. These functions cover image
// XObjects whose final codec (DCT, JPX, CCITT) is handed on unchanged or
// decoded here, so only the stages before it need undoing:
//
//	data, err := filters.Decode("ASCII85Decode", raw, filters.Params{})
//
// FlateDecode honours the TIFF (2) and PNG (10-15) predictors.
package filters
