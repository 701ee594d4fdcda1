// Package soft parses NCBI GEO SOFT text files.
//
// SOFT is line oriented. Lines starting with "^" open an entity
// ("^SAMPLE = GSM1"), lines starting with "!" carry attributes
// ("!Sample_characteristics_ch1 = age: 45") or delimit a data table
// ("!sample_table_begin"), and lines starting with "#" describe table
// columns. Attribute keys are stored without their entity prefix, so
// "!Sample_characteristics_ch1" becomes "characteristics_ch1". Repeated
// attributes accumulate values in file order.
//
// Only table shape is retained: column names, descriptions and row count.
// Table values are skipped.
//
// Files may be gzip-compressed; compression is detected from content.
package soft
