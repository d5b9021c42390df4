package catalog

// definitionRows is the static variable table described in spec.md §2.1:
// for each simulator variable, a name, data kind, unit tag, access mode,
// and primary semantic flag. This is the "data-driven table" the spec
// calls out as the bulk of the catalog's useful lines; it is deliberately
// plain data, not logic.
//
// Names follow the dotted "Group.Member" convention used throughout the
// spec's examples (Aircraft.Altitude, Controls.Throttle, Doors.Left).
func definitionRows() []row {
	rows := make([]row, 0, 256)
	rows = append(rows, aircraftRows()...)
	rows = append(rows, controlsRows()...)
	rows = append(rows, autopilotRows()...)
	rows = append(rows, navigationRows()...)
	rows = append(rows, communicationsRows()...)
	rows = append(rows, doorsRows()...)
	rows = append(rows, warningsRows()...)
	rows = append(rows, performanceRows()...)
	rows = append(rows, simulationRows()...)
	rows = append(rows, viewRows()...)
	rows = append(rows, electricalRows()...)
	rows = append(rows, fuelRows()...)
	rows = append(rows, engineDetailRows()...)
	rows = append(rows, lightsRows()...)
	rows = append(rows, deicingRows()...)
	rows = append(rows, radioNavExtraRows()...)
	rows = append(rows, trimIndicatorRows()...)
	rows = append(rows, autopilotVNAVRows()...)
	rows = append(rows, weatherRows()...)
	rows = append(rows, forceFeedbackRows()...)
	rows = append(rows, hydraulicsRows()...)
	rows = append(rows, pressurizationRows()...)
	rows = append(rows, miscRows()...)
	return rows
}

func scalar(name, unit string, access Access, flag Flag) row {
	return row{name: name, kind: Scalar, unit: unit, access: access, flag: flag}
}

func vec2(name, unit string, access Access, flag Flag) row {
	return row{name: name, kind: Vec2, unit: unit, access: access, flag: flag}
}

func vec3(name, unit string, access Access, flag Flag) row {
	return row{name: name, kind: Vec3, unit: unit, access: access, flag: flag}
}

func vec4(name, unit string, access Access, flag Flag) row {
	return row{name: name, kind: Vec4, unit: unit, access: access, flag: flag}
}

// opaque registers a message-only variable: spec.md §3 lists "opaque" as a
// catalog data kind alongside scalar/vector/string, for entries observed on
// the wire with no payload the bridge can usefully mirror into the shared
// record (storage resolves to "message_only" in the offsets descriptor).
func opaque(name string, access Access, flag Flag) row {
	return row{name: name, kind: Opaque, unit: "", access: access, flag: flag}
}

func str(name string, access Access, flag Flag) row {
	return row{name: name, kind: String, unit: "", access: access, flag: flag}
}

// variant registers a second wire identity for a name already present with
// a different Flag, per spec.md §3: "the same name may appear with
// distinct flags (e.g. a control with both a direct value and a move-rate
// variant)".
func variant(name, tag, unit string, access Access, flag Flag) row {
	r := scalar(name, unit, access, flag)
	r.variant = tag
	return r
}

func aircraftRows() []row {
	return []row{
		scalar("Aircraft.Altitude", "meters", Read, FlagValue),
		scalar("Aircraft.IndicatedAirspeed", "meters_per_second", Read, FlagValue),
		scalar("Aircraft.IndicatedAirspeedTrend", "meters_per_second", Read, FlagValue),
		scalar("Aircraft.GroundSpeed", "meters_per_second", Read, FlagValue),
		scalar("Aircraft.VerticalSpeed", "meters_per_second", Read, FlagValue),
		scalar("Aircraft.Pitch", "radians", Read, FlagValue),
		scalar("Aircraft.Bank", "radians", Read, FlagValue),
		scalar("Aircraft.TrueHeading", "radians", Read, FlagValue),
		scalar("Aircraft.MagneticHeading", "radians", Read, FlagValue),
		scalar("Aircraft.AngleOfAttack", "radians", Read, FlagValue),
		scalar("Aircraft.AngleOfAttackLimit", "radians", Read, FlagValue),
		scalar("Aircraft.AccelerationG", "g", Read, FlagValue),
		vec3("Aircraft.Wind", "meters_per_second", Read, FlagValue),
		scalar("Aircraft.RateOfTurn", "radians_per_second", Read, FlagValue),
		scalar("Aircraft.MachNumber", "mach", Read, FlagValue),
		scalar("Aircraft.OnGround", "bool", Read, FlagActive),
		scalar("Aircraft.OnRunway", "bool", Read, FlagActive),
		scalar("Aircraft.Crashed", "bool", Read, FlagEvent),
		scalar("Aircraft.Gear", "ratio", ReadWrite, FlagValue),
		scalar("Aircraft.Flaps", "ratio", ReadWrite, FlagValue),
		scalar("Aircraft.Slats", "ratio", Read, FlagValue),
		scalar("Aircraft.Throttle", "ratio", Read, FlagValue),
		scalar("Aircraft.AirBrake", "ratio", ReadWrite, FlagValue),
		scalar("Aircraft.GroundSpoilersArmed", "bool", Read, FlagToggle),
		scalar("Aircraft.ParkingBrake", "bool", ReadWrite, FlagToggle),
		scalar("Aircraft.AutoBrakeSetting", "enum", ReadWrite, FlagValue),
		scalar("Aircraft.Name", "text", Read, FlagValue),
		str("Aircraft.NearestAirportIdentifier", Read, FlagValue),
		scalar("Aircraft.NearestAirportDistance", "meters", Read, FlagValue),
		scalar("Aircraft.Category.Jet", "bool", Read, FlagActive),
		scalar("Aircraft.Category.Glider", "bool", Read, FlagActive),
		vec3("Aircraft.Position", "degrees_meters", Read, FlagValue),
		vec3("Aircraft.Velocity", "meters_per_second", Read, FlagValue),
		vec4("Aircraft.OrientationQuaternion", "ratio", Read, FlagValue),
		vec3("Aircraft.Acceleration", "meters_per_second2", Read, FlagValue),
		scalar("Aircraft.Altitude.Radio", "meters", Read, FlagValue),
		scalar("Aircraft.UniversalTime", "seconds", Read, FlagValue),
		scalar("Aircraft.Gravity", "meters_per_second2", Read, FlagValue),
	}
}

func controlsRows() []row {
	rows := []row{
		scalar("Controls.Throttle", "ratio", ReadWrite, FlagValue),
		variant("Controls.Throttle", "Move", "ratio_per_second", Write, FlagMove),
		scalar("Controls.Pitch", "ratio", ReadWrite, FlagValue),
		scalar("Controls.Roll", "ratio", ReadWrite, FlagValue),
		scalar("Controls.Yaw", "ratio", ReadWrite, FlagValue),
		scalar("Controls.Flaps", "ratio", ReadWrite, FlagValue),
		scalar("Controls.Gear", "bool", ReadWrite, FlagToggle),
		scalar("Controls.WheelBrake.Left", "ratio", ReadWrite, FlagValue),
		scalar("Controls.WheelBrake.Right", "ratio", ReadWrite, FlagValue),
		scalar("Controls.ParkingBrake", "bool", ReadWrite, FlagToggle),
		scalar("Controls.SpeedBrake", "ratio", ReadWrite, FlagValue),
		variant("Controls.SpeedBrake", "Arm", "bool", Write, FlagToggle),
		scalar("Controls.TrimPitch", "ratio", ReadWrite, FlagValue),
		variant("Controls.TrimPitch", "Move", "ratio_per_second", Write, FlagMove),
		scalar("Controls.TrimRoll", "ratio", ReadWrite, FlagValue),
		scalar("Controls.TrimYaw", "ratio", ReadWrite, FlagValue),
		scalar("Controls.TillerSteering", "ratio", ReadWrite, FlagValue),
		scalar("Controls.NoseWheelSteering", "ratio", ReadWrite, FlagValue),
		scalar("Controls.PropellerPitch", "ratio", ReadWrite, FlagValue),
		scalar("Controls.Mixture", "ratio", ReadWrite, FlagValue),
		scalar("Controls.Condition", "ratio", ReadWrite, FlagValue),
		scalar("Controls.GliderAirBrake", "ratio", ReadWrite, FlagValue),
	}
	return rows
}

func autopilotRows() []row {
	return []row{
		scalar("Autopilot.Engaged", "bool", ReadWrite, FlagToggle),
		scalar("Autopilot.SelectedAirspeed", "meters_per_second", ReadWrite, FlagValue),
		scalar("Autopilot.SelectedHeading", "radians", ReadWrite, FlagValue),
		scalar("Autopilot.SelectedAltitude", "meters", ReadWrite, FlagValue),
		scalar("Autopilot.SelectedVerticalSpeed", "meters_per_second", ReadWrite, FlagValue),
		scalar("Autopilot.SelectedCourse", "radians", ReadWrite, FlagValue),
		scalar("Autopilot.ThrottleEngaged", "bool", Read, FlagToggle),
		scalar("Autopilot.Type", "enum", Read, FlagValue),
		scalar("Autopilot.ActiveLateralMode", "enum", Read, FlagValue),
		scalar("Autopilot.ActiveVerticalMode", "enum", Read, FlagValue),
		scalar("Autopilot.ArmedLateralMode", "enum", Read, FlagValue),
		scalar("Autopilot.ArmedVerticalMode", "enum", Read, FlagValue),
		scalar("Autopilot.Autothrottle", "bool", ReadWrite, FlagToggle),
		scalar("Autopilot.FlightDirector", "bool", ReadWrite, FlagToggle),
		scalar("Autopilot.UseMachNumber", "bool", ReadWrite, FlagToggle),
		scalar("Autopilot.SpeedManaged", "bool", ReadWrite, FlagToggle),
		scalar("Autopilot.HeadingManaged", "bool", ReadWrite, FlagToggle),
	}
}

func navigationRows() []row {
	return []row{
		scalar("Navigation.NAV1.Frequency", "mhz", ReadWrite, FlagValue),
		scalar("Navigation.NAV1.StandbyFrequency", "mhz", ReadWrite, FlagValue),
		scalar("Navigation.NAV1.CourseDeviation", "radians", Read, FlagValue),
		scalar("Navigation.NAV1.Available", "bool", Read, FlagActive),
		scalar("Navigation.NAV2.Frequency", "mhz", ReadWrite, FlagValue),
		scalar("Navigation.NAV2.StandbyFrequency", "mhz", ReadWrite, FlagValue),
		scalar("Navigation.NAV2.CourseDeviation", "radians", Read, FlagValue),
		scalar("Navigation.ADF1.Frequency", "khz", ReadWrite, FlagValue),
		scalar("Navigation.ILS.Frequency", "mhz", ReadWrite, FlagValue),
		scalar("Navigation.ILS.CourseDeviation", "radians", Read, FlagValue),
		scalar("Navigation.ILS.GlideslopeDeviation", "radians", Read, FlagValue),
		scalar("Navigation.ILS.Available", "bool", Read, FlagActive),
		scalar("Navigation.GPS.Course", "radians", Read, FlagValue),
		scalar("Navigation.GPS.CrossTrackError", "meters", Read, FlagValue),
		scalar("Navigation.GPS.WaypointDistance", "meters", Read, FlagValue),
		scalar("Navigation.GPS.WaypointETA", "seconds", Read, FlagValue),
		str("Navigation.GPS.WaypointIdentifier", Read, FlagValue),
		scalar("Navigation.SelectedCourse1", "radians", ReadWrite, FlagValue),
		scalar("Navigation.SelectedCourse2", "radians", ReadWrite, FlagValue),
	}
}

func communicationsRows() []row {
	return []row{
		scalar("Communications.COM1.Frequency", "mhz", ReadWrite, FlagValue),
		scalar("Communications.COM1.StandbyFrequency", "mhz", ReadWrite, FlagValue),
		scalar("Communications.COM2.Frequency", "mhz", ReadWrite, FlagValue),
		scalar("Communications.COM2.StandbyFrequency", "mhz", ReadWrite, FlagValue),
		scalar("Communications.Transponder.Code", "octal", ReadWrite, FlagValue),
		scalar("Communications.Transponder.Mode", "enum", ReadWrite, FlagValue),
		scalar("Communications.Transponder.Ident", "bool", Write, FlagEvent),
	}
}

func doorsRows() []row {
	return []row{
		scalar("Doors.Left", "ratio", ReadWrite, FlagStep),
		scalar("Doors.Right", "ratio", ReadWrite, FlagStep),
		scalar("Doors.CargoFront", "ratio", ReadWrite, FlagStep),
		scalar("Doors.CargoRear", "ratio", ReadWrite, FlagStep),
		scalar("Windows.Left", "ratio", ReadWrite, FlagStep),
		scalar("Windows.Right", "ratio", ReadWrite, FlagStep),
		scalar("Canopy.Open", "ratio", ReadWrite, FlagStep),
		scalar("Exits.BoardingStairs", "ratio", ReadWrite, FlagStep),
	}
}

func warningsRows() []row {
	return []row{
		scalar("Warnings.MasterWarning", "bool", Read, FlagActive),
		scalar("Warnings.MasterCaution", "bool", Read, FlagActive),
		scalar("Warnings.StallWarning", "bool", Read, FlagActive),
		scalar("Warnings.OverspeedWarning", "bool", Read, FlagActive),
		scalar("Warnings.TerrainWarning", "bool", Read, FlagActive),
		scalar("Warnings.LowFuelWarning", "bool", Read, FlagActive),
		scalar("Warnings.GearWarning", "bool", Read, FlagActive),
		scalar("Warnings.TrafficAlert", "bool", Read, FlagActive),
	}
}

// performanceRows covers airframe-level summary fields. Per-engine detail
// (RPM, N1/N2, EGT, fire warnings, ...) lives in engineDetailRows instead,
// generalized across up to four engines rather than hardcoded for two.
func performanceRows() []row {
	return []row{
		scalar("Performance.FuelTotalQuantity", "kilograms", Read, FlagValue),
		scalar("Performance.FuelFlow", "kilograms_per_second", Read, FlagValue),
		scalar("Performance.GrossWeight", "kilograms", Read, FlagValue),
		scalar("Performance.CenterOfGravity", "ratio", Read, FlagValue),
	}
}

func simulationRows() []row {
	return []row{
		scalar("Simulation.Time", "seconds", Read, FlagValue),
		scalar("Simulation.TimeOfDay", "seconds", Read, FlagValue),
		scalar("Simulation.Paused", "bool", ReadWrite, FlagToggle),
		scalar("Simulation.FlightPlanActive", "bool", Read, FlagActive),
		scalar("Simulation.Variometer", "meters_per_second", Read, FlagValue),
		scalar("Simulation.PowerOn", "bool", ReadWrite, FlagToggle),
		scalar("Simulation.ExternalSoundLevel", "ratio", Read, FlagValue),
		opaque("Simulation.Heartbeat", Read, FlagEvent),
	}
}

func viewRows() []row {
	return []row{
		scalar("View.Internal", "bool", ReadWrite, FlagToggle),
		vec3("View.Position", "meters", ReadWrite, FlagOffset),
		scalar("View.Zoom", "ratio", ReadWrite, FlagValue),
		scalar("View.DirectionPan", "radians", ReadWrite, FlagOffset),
	}
}
