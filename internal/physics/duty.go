package physics

// dutyStage resolves the concurrent/total sector ratio into the single
// Ford-Roman averaged duty used by every downstream energy, mass, and field
// formula. There is no separate display duty.
func dutyStage(s *PipelineState) {
	if s.SectorCount < 1 {
		s.SectorCount = 1
	}

	policy := PolicyFor(s.Mode)
	s.ConcurrentSectors = clamp(policy.ConcurrentSectors, 0, s.SectorCount)
	s.DutyLocal = BurstDutyLocal

	// Standby is forced to exactly zero regardless of the formula, so the
	// idle invariants hold bit-for-bit, not just approximately.
	if s.Mode == ModeStandby {
		s.DutyEffective = 0
		return
	}

	s.DutyEffective = clamp(
		s.DutyLocal*float64(s.ConcurrentSectors)/float64(s.SectorCount),
		0, 1)
}
