package service

import (
	"context"

	"AwardSync/internal/model"
)

// FieldDiff 三个参与比较的字段各自是否不同；slug 由 name 派生，不参与比较
type FieldDiff struct {
	Name  bool `json:"name"`
	Year  bool `json:"year"`
	Image bool `json:"image"`
}

func (d FieldDiff) Any() bool {
	return d.Name || d.Year || d.Image
}

// RecordDiffer 比较 Airtable 规范字段与已关联的 Webflow 条目
type RecordDiffer struct {
	fingerprinter *Fingerprinter
}

func NewRecordDiffer(fingerprinter *Fingerprinter) *RecordDiffer {
	return &RecordDiffer{fingerprinter: fingerprinter}
}

func (d *RecordDiffer) Diff(ctx context.Context, source *model.AwardFields, target *model.TargetItem) FieldDiff {
	return FieldDiff{
		Name:  SanitizeField(source.Name) != SanitizeField(target.FieldData.Name),
		Year:  SanitizeField(source.Year) != SanitizeField(target.FieldData.Year),
		Image: d.fingerprinter.ImagesDiffer(ctx, source.AwardWinnerImage, target.FieldData.AwardWinnerImage.URL),
	}
}

func (d *RecordDiffer) HasDifferences(ctx context.Context, source *model.AwardFields, target *model.TargetItem) bool {
	return d.Diff(ctx, source, target).Any()
}
