// Package report archives run reports to S3-compatible object storage.
//
// Every run, committed or rolled back, can be written as an indented JSON document
// keyed by date and run id. The status server reads the archive back through List and Get.
package report
