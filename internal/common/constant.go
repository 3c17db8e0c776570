package common

import "strconv"

// RecordID is the key of a submission row: "<branch>_<week>".
func RecordID(branchID int, weekID string) string {
	return strconv.Itoa(branchID) + "_" + weekID
}
