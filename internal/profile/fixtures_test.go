package profile

import "testing"

func rec(schoolName, school, year, cluster, number string, metrics map[Metric]string) Record {
	return Record{
		SchoolName:   schoolName,
		School:       school,
		Year:         year,
		GradeCluster: cluster,
		SchoolNumber: number,
		Metrics:      metrics,
	}
}

// fixtureRecords models an elementary level with a merged school, a school
// missing a year, the reference rows, and one building that also reports a
// middle cluster.
func fixtureRecords() []Record {
	rs := []Record{
		rec("Atlanta", "Atlanta", "2016", "Elementary", "", map[Metric]string{CCRPIScore: "70.1", ELA: "0.30", Math: "0.28", Attendance: "0.80", Enrollment: "50000"}),
		rec("Georgia", "Georgia", "2016", "Elementary", "", map[Metric]string{CCRPIScore: "72", ELA: "0.35", Math: "0.33"}),
		rec("Atlanta", "Atlanta", "2017", "Elementary", "", map[Metric]string{CCRPIScore: "75", ELA: "0.80", Math: "0.30", ELASGP: "0.60", MathSGP: "0.62", Attendance: "0.85", LikeSchool: "0.70", SafeSchool: "0.75", SWD: "0.11", Mobility: "0.20", DirectCert: "0.50"}),
		rec("Georgia", "Georgia", "2017", "Elementary", "", map[Metric]string{CCRPIScore: "70", ELA: "0.75", Math: "0.40", ELASGP: "0.64", MathSGP: "0.63", Attendance: "0.90"}),
		rec("Atlanta", "Atlanta", "3 Year Avg", "Elementary", "", map[Metric]string{CCRPIScore: "73"}),
		rec("Georgia", "Georgia", "3 Year Avg", "Elementary", "", map[Metric]string{CCRPIScore: "71"}),

		rec("Alpha Elementary School", "Alpha", "2016", "Elementary", "101", map[Metric]string{CCRPIScore: "68.2", ELA: "0.25", Math: "0.20", Enrollment: "410"}),
		rec("Alpha Elementary School", "Alpha", "2017", "Elementary", "101", map[Metric]string{
			CCRPIScore: "80.5", ELA: "0.82", Math: "0.25", ELASGP: "0.70", MathSGP: "0.58", BTOScore: "4.2",
			Attendance: "0.87", LikeSchool: "0.69", SafeSchool: "0.81", Enrollment: "432",
			SWD: "0.12", Mobility: "0.30", LEP: "",
			Black: "0.85", White: "0.10", Hispanic: "0",
		}),
		rec("Alpha Elementary School", "Alpha", "3 Year Avg", "Elementary", "101", map[Metric]string{CCRPIScore: "77.3", BTOScore: "-2.5"}),

		rec("Beta Elementary", "Beta", "2017", "Elementary", "102", map[Metric]string{
			CCRPIScore: "60", ELA: "", Math: "0.22", BTOScore: "-3", Enrollment: "300",
			Black: "0.60", Asian: "0.40", DirectCert: "0.55",
		}),

		rec("Gamma Academy", "Gamma Old", "2015", "Elementary", "103", map[Metric]string{ELA: "0.40", Enrollment: "200"}),
		rec("Gamma Academy", "Gamma Old", "2016", "Elementary", "103", map[Metric]string{ELA: "0.45", Enrollment: "210"}),
		rec("Gamma Academy", "Gamma", "2017", "Elementary", "103", map[Metric]string{ELA: "0.50", Enrollment: "500"}),

		rec("Alpha Elementary School", "Alpha", "2017", "Middle", "101", map[Metric]string{CCRPIScore: "66"}),
		rec("Atlanta", "Atlanta", "2017", "Middle", "", map[Metric]string{CCRPIScore: "71"}),
	}
	rs[7].BTOStatus = "Above"
	rs[9].BTOStatus = "Below"
	return rs
}

func fixtureLevel(t *testing.T) (*Dataset, *Level) {
	t.Helper()
	ds := NewDataset(fixtureRecords())
	level, err := ds.Level("Elementary")
	if err != nil {
		t.Fatalf("Expected Elementary level, got error: %v", err)
	}
	return ds, level
}
