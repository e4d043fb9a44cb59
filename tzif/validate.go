package tzif

import (
	"errors"
	"fmt"
)

// Validate checks a decoded File for internal consistency: that header
// counts agree with the data actually present, that the V1 header is stamped
// V1 (even in a V2 file, as DecodeFile expects), and that a V2 file's V2
// header is stamped V2. It is the check tzc runs
// against its own compiled output as part of a round trip through Encode and
// DecodeFile.
func Validate(d Data) error {
	var errs []error
	if d.V1Header.Version != V1 {
		errs = append(errs, fmt.Errorf("inconsistent version: file = %v, v1 header = %v", d.Version, d.V1Header.Version))
	}

	if err := validateV1(d); err != nil {
		errs = append(errs, err...)
	}

	if d.Version == V2 {
		if d.V2Header.Version != V2 {
			errs = append(errs, fmt.Errorf("inconsistent version: file = %v, v2 header = %v", d.Version, d.V2Header.Version))
		}
		if err := validateV2(d); err != nil {
			errs = append(errs, err...)
		}
	}

	return errors.Join(errs...)
}

func validateV1(d Data) []error {
	var (
		err    []error
		data   = d.V1Data
		header = d.V1Header
	)

	if header.Leapcnt != 0 || header.Isutcnt != 0 || header.Isstdcnt != 0 {
		err = append(err, fmt.Errorf("invalid v1 header: leap-second records and UT/standard indicators are not supported"))
	}

	// Timecnt
	if len(data.TransitionTimes) != int(header.Timecnt) {
		err = append(err, fmt.Errorf("invalid v1 timecnt: header = %d, transition times = %d", header.Timecnt, len(data.TransitionTimes)))
	}
	if times, types := len(data.TransitionTimes), len(data.TransitionTypes); times != types {
		err = append(err, fmt.Errorf("inconsistent v1 transitions: transition times = %d, transition types = %d", times, types))
	}

	// Typecnt
	if header.Typecnt == 0 {
		err = append(err, fmt.Errorf("invalid v1 typecnt: must not be zero"))
	}
	if len(data.LocalTimeTypeRecord) != int(header.Typecnt) {
		err = append(err, fmt.Errorf("invalid v1 typecnt: header = %d, data = %d", header.Typecnt, len(data.LocalTimeTypeRecord)))
	}

	// Charcnt
	if header.Charcnt == 0 {
		err = append(err, fmt.Errorf("invalid v1 charcnt: must not be zero"))
	}
	if len(data.TimeZoneDesignation) != int(header.Charcnt) {
		err = append(err, fmt.Errorf("invalid v1 charcnt: header = %d, data = %d", header.Charcnt, len(data.TimeZoneDesignation)))
	}
	if header.Charcnt > 0 && data.TimeZoneDesignation[len(data.TimeZoneDesignation)-1] != 0 {
		err = append(err, fmt.Errorf("invalid v1 time zone designations: missing null terminator"))
	}
	return err
}

func validateV2(d Data) []error {
	var (
		err    []error
		data   = d.V2Data
		header = d.V2Header
	)

	if header.Leapcnt != 0 || header.Isutcnt != 0 || header.Isstdcnt != 0 {
		err = append(err, fmt.Errorf("invalid v2 header: leap-second records and UT/standard indicators are not supported"))
	}

	// Timecnt
	if len(data.TransitionTimes) != int(header.Timecnt) {
		err = append(err, fmt.Errorf("invalid v2 timecnt: header = %d, transition times = %d", header.Timecnt, len(data.TransitionTimes)))
	}
	if times, types := len(data.TransitionTimes), len(data.TransitionTypes); times != types {
		err = append(err, fmt.Errorf("inconsistent v2 transitions: transition times = %d, transition types = %d", times, types))
	}

	// Typecnt
	if header.Typecnt == 0 {
		err = append(err, fmt.Errorf("invalid v2 typecnt: must not be zero"))
	}
	if len(data.LocalTimeTypeRecord) != int(header.Typecnt) {
		err = append(err, fmt.Errorf("invalid v2 typecnt: header = %d, data = %d", header.Typecnt, len(data.LocalTimeTypeRecord)))
	}

	// Charcnt
	if header.Charcnt == 0 {
		err = append(err, fmt.Errorf("invalid v2 charcnt: must not be zero"))
	}
	if len(data.TimeZoneDesignation) != int(header.Charcnt) {
		err = append(err, fmt.Errorf("invalid v2 charcnt: header = %d, data = %d", header.Charcnt, len(data.TimeZoneDesignation)))
	}
	if header.Charcnt > 0 && data.TimeZoneDesignation[len(data.TimeZoneDesignation)-1] != 0 {
		err = append(err, fmt.Errorf("invalid v2 time zone designations: missing null terminator"))
	}
	return err
}
