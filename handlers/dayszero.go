package handlers

import (
	"context"
	"math"
	"time"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/recordmodel"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

// Fields on the measurement and sample detail records involved in the
// days-since-day-zero calculation.
const (
	fieldMeasurementTimestamp = "C_Timestamp"
	fieldDaysSinceD0          = "C_DaysSinceD0"
	fieldDay                  = "C_Day"

	// The seeding entry is identified by carrying both of these fields.
	fieldPassagingToStep = "PassagingToStep"
	fieldSeedingDate     = "Timestamp"
	fieldDateCreated     = "DateCreated"
)

// DaysSinceDayZero stamps measurement records with the elapsed time since
// the sample was seeded onto its bioreactor.
//
// Seeding time is set on the sample detail records of the source sample from
// which the bioreactor aliquot was created. The detail entry is identified
// by the PassagingToStep field; when a sample was processed more than once,
// the most recently created detail wins.
type DaysSinceDayZero struct {
	sapio *client.Client
}

func NewDaysSinceDayZero(sapio *client.Client) *DaysSinceDayZero {
	return &DaysSinceDayZero{sapio: sapio}
}

func (h *DaysSinceDayZero) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	mgr := recordmodel.NewManager(h.sapio)

	records := mgr.AddExistingRecords(wctx.DataRecordList)
	if len(records) == 0 {
		return webhook.NewResult(true), nil
	}

	// measurement -> sample on bioreactor -> source sample -> its details
	path := recordmodel.NewPath().
		Parent(dataTypeSample).
		Parent(dataTypeSample).
		Child(dataTypeELNSampleDetail)
	if err := mgr.LoadPath(ctx, records, path); err != nil {
		return nil, err
	}

	for _, record := range records {
		seedingTime, err := h.seedingTime(ctx, record)
		if err != nil {
			return nil, err
		}

		if seedingTime == 0 {
			continue
		}

		measured := record.Int64Field(fieldMeasurementTimestamp)
		elapsed := time.Duration(measured-seedingTime) * time.Millisecond

		days := elapsed.Hours() / 24

		record.SetFieldValue(fieldDaysSinceD0, days)
		// floor, not truncate: a measurement logged before seeding lands on
		// day -1, not day 0
		record.SetFieldValue(fieldDay, int64(math.Floor(days)))
	}

	if err := mgr.Commit(ctx); err != nil {
		return nil, err
	}

	return webhook.NewResult(true), nil
}

// seedingTime walks from a measurement record to the sample detail records
// of its source sample and returns the seeding timestamp, in epoch millis.
// Zero means no seeding entry was found; relationships are expected to have
// been loaded.
func (h *DaysSinceDayZero) seedingTime(ctx context.Context, record *recordmodel.Record) (int64, error) {
	var (
		latestDetailCreated int64
		seedingDate         int64
	)

	relatedSamples := record.ParentsOfType(dataTypeSample)
	if len(relatedSamples) == 0 {
		return 0, nil
	}

	// There should only be one of each along this path, but nothing in the
	// data model enforces it.
	for _, relatedSample := range relatedSamples {
		sourceSamples := relatedSample.ParentsOfType(dataTypeSample)
		if len(sourceSamples) == 0 {
			return 0, nil
		}

		for _, sourceSample := range sourceSamples {
			details := sourceSample.ChildrenOfType(dataTypeELNSampleDetail)
			if len(details) == 0 {
				return 0, nil
			}

			for _, detail := range details {
				use, err := h.shouldUseSampleDetail(ctx, detail, latestDetailCreated)
				if err != nil {
					return 0, err
				}

				if !use {
					continue
				}

				if ts := detail.Int64Field(fieldSeedingDate); ts != 0 {
					latestDetailCreated = detail.Int64Field(fieldDateCreated)
					seedingDate = ts
				}
			}
		}
	}

	return seedingDate, nil
}

// shouldUseSampleDetail checks the detail's type declares the identifying
// fields and that it is at least as recent as the best candidate so far.
func (h *DaysSinceDayZero) shouldUseSampleDetail(ctx context.Context, detail *recordmodel.Record, latestDetailCreated int64) (bool, error) {
	ok, err := h.sapio.IsFieldInDataType(ctx, detail.DataTypeName(), fieldPassagingToStep)
	if err != nil || !ok {
		return false, err
	}

	ok, err = h.sapio.IsFieldInDataType(ctx, detail.DataTypeName(), fieldSeedingDate)
	if err != nil || !ok {
		return false, err
	}

	if latestDetailCreated > detail.Int64Field(fieldDateCreated) {
		return false, nil
	}

	return true, nil
}
