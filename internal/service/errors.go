package service

import "docqa-go/pkg/tika"

// ErrExtractorUnavailable is returned for pdf and docx uploads when no
// extractor is configured.
var ErrExtractorUnavailable = tika.ErrExtractorUnavailable
