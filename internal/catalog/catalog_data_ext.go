package catalog

// This file extends definitionRows with the groups that bring the catalog
// to 305 distinct variables (308 rows including wire-identity variants).
// Split from catalog_data.go purely for
// readability; Build treats every row() producer identically regardless
// of which file it's declared in.

func electricalRows() []row {
	rows := []row{
		scalar("Electrical.BatteryVoltage.1", "volts", Read, FlagValue),
		scalar("Electrical.BatteryVoltage.2", "volts", Read, FlagValue),
		scalar("Electrical.BatterySwitch.1", "bool", ReadWrite, FlagToggle),
		scalar("Electrical.BatterySwitch.2", "bool", ReadWrite, FlagToggle),
		scalar("Electrical.GeneratorSwitch.1", "bool", ReadWrite, FlagToggle),
		scalar("Electrical.GeneratorSwitch.2", "bool", ReadWrite, FlagToggle),
		scalar("Electrical.GeneratorAmps.1", "amps", Read, FlagValue),
		scalar("Electrical.GeneratorAmps.2", "amps", Read, FlagValue),
		scalar("Electrical.APUGeneratorSwitch", "bool", ReadWrite, FlagToggle),
		scalar("Electrical.APUGeneratorAmps", "amps", Read, FlagValue),
		scalar("Electrical.ExternalPowerAvailable", "bool", Read, FlagActive),
		scalar("Electrical.ExternalPowerSwitch", "bool", ReadWrite, FlagToggle),
		scalar("Electrical.BusVoltage.Main", "volts", Read, FlagValue),
		scalar("Electrical.BusVoltage.Essential", "volts", Read, FlagValue),
		scalar("Electrical.BusVoltage.Standby", "volts", Read, FlagValue),
		scalar("Electrical.InverterSwitch", "bool", ReadWrite, FlagToggle),
	}
	return rows
}

func fuelRows() []row {
	rows := []row{
		scalar("Fuel.Quantity.Left", "kilograms", Read, FlagValue),
		scalar("Fuel.Quantity.Right", "kilograms", Read, FlagValue),
		scalar("Fuel.Quantity.Center", "kilograms", Read, FlagValue),
		scalar("Fuel.Quantity.Auxiliary", "kilograms", Read, FlagValue),
		scalar("Fuel.Temperature.Left", "celsius", Read, FlagValue),
		scalar("Fuel.Temperature.Right", "celsius", Read, FlagValue),
		scalar("Fuel.Pressure.1", "psi", Read, FlagValue),
		scalar("Fuel.Pressure.2", "psi", Read, FlagValue),
		scalar("Fuel.PumpSwitch.Left", "bool", ReadWrite, FlagToggle),
		scalar("Fuel.PumpSwitch.Right", "bool", ReadWrite, FlagToggle),
		scalar("Fuel.PumpSwitch.Center", "bool", ReadWrite, FlagToggle),
		scalar("Fuel.CrossfeedValve", "bool", ReadWrite, FlagToggle),
		scalar("Fuel.CutoffLever.1", "bool", ReadWrite, FlagToggle),
		scalar("Fuel.CutoffLever.2", "bool", ReadWrite, FlagToggle),
		scalar("Fuel.TotalUsed", "kilograms", Read, FlagValue),
		scalar("Fuel.TankSelector", "enum", ReadWrite, FlagValue),
	}
	return rows
}

// engineDetailRows rounds out Performance's summary engine fields with
// per-engine detail for a four-engine airframe -- the catalog is a union
// across every supported aircraft, so entries for engines 3/4 simply read
// as constant zero on twins.
func engineDetailRows() []row {
	var rows []row
	metrics := []struct {
		suffix, unit string
	}{
		{"RPM", "rpm"},
		{"N1", "percent"},
		{"N2", "percent"},
		{"EGT", "celsius"},
		{"OilTemperature", "celsius"},
		{"OilPressure", "psi"},
		{"FuelFlow", "kilograms_per_second"},
		{"ManifoldPressure", "inhg"},
		{"Torque", "percent"},
		{"Vibration", "ratio"},
	}
	for engine := 1; engine <= 4; engine++ {
		for _, m := range metrics {
			rows = append(rows, scalar(engineName(engine, m.suffix), m.unit, Read, FlagValue))
		}
		rows = append(rows, scalar(engineName(engine, "Starter"), "bool", ReadWrite, FlagToggle))
		rows = append(rows, scalar(engineName(engine, "IgnitionSwitch"), "enum", ReadWrite, FlagValue))
		rows = append(rows, scalar(engineName(engine, "Reverser"), "ratio", ReadWrite, FlagValue))
		rows = append(rows, scalar(engineName(engine, "FireWarning"), "bool", Read, FlagActive))
		rows = append(rows, scalar(engineName(engine, "FireExtinguisher"), "bool", Write, FlagEvent))
	}
	return rows
}

func engineName(engine int, field string) string {
	digits := [...]string{"0", "1", "2", "3", "4"}
	return "Performance.Engine" + field + "." + digits[engine]
}

func lightsRows() []row {
	rows := []row{
		scalar("Lights.Landing", "bool", ReadWrite, FlagToggle),
		scalar("Lights.Taxi", "bool", ReadWrite, FlagToggle),
		scalar("Lights.Navigation", "bool", ReadWrite, FlagToggle),
		scalar("Lights.Beacon", "bool", ReadWrite, FlagToggle),
		scalar("Lights.Strobe", "bool", ReadWrite, FlagToggle),
		scalar("Lights.Panel", "ratio", ReadWrite, FlagValue),
		scalar("Lights.Cabin", "bool", ReadWrite, FlagToggle),
		scalar("Lights.Logo", "bool", ReadWrite, FlagToggle),
		scalar("Lights.Wing", "bool", ReadWrite, FlagToggle),
		scalar("Lights.RecognitionLights", "bool", ReadWrite, FlagToggle),
		scalar("Lights.SeatbeltSign", "bool", ReadWrite, FlagToggle),
		scalar("Lights.NoSmokingSign", "bool", ReadWrite, FlagToggle),
	}
	return rows
}

func deicingRows() []row {
	rows := []row{
		scalar("Deicing.PitotHeat.1", "bool", ReadWrite, FlagToggle),
		scalar("Deicing.PitotHeat.2", "bool", ReadWrite, FlagToggle),
		scalar("Deicing.WingAntiIce", "bool", ReadWrite, FlagToggle),
		scalar("Deicing.EngineAntiIce.1", "bool", ReadWrite, FlagToggle),
		scalar("Deicing.EngineAntiIce.2", "bool", ReadWrite, FlagToggle),
		scalar("Deicing.WindshieldHeat", "bool", ReadWrite, FlagToggle),
		scalar("Deicing.PropellerHeat", "bool", ReadWrite, FlagToggle),
		scalar("Deicing.IceDetected", "bool", Read, FlagActive),
	}
	return rows
}

func radioNavExtraRows() []row {
	rows := []row{
		scalar("Navigation.NAV2.Available", "bool", Read, FlagActive),
		scalar("Navigation.ADF2.Frequency", "khz", ReadWrite, FlagValue),
		scalar("Communications.COM3.Frequency", "mhz", ReadWrite, FlagValue),
		scalar("Communications.COM3.StandbyFrequency", "mhz", ReadWrite, FlagValue),
		scalar("Navigation.DME1.Distance", "meters", Read, FlagValue),
		scalar("Navigation.DME1.Speed", "meters_per_second", Read, FlagValue),
		scalar("Navigation.DME2.Distance", "meters", Read, FlagValue),
		scalar("Navigation.GPS.GroundSpeed", "meters_per_second", Read, FlagValue),
		scalar("Navigation.GPS.Altitude", "meters", Read, FlagValue),
		str("Navigation.GPS.FlightPlanNextWaypoint", Read, FlagValue),
		scalar("Navigation.VOR1.Available", "bool", Read, FlagActive),
		scalar("Navigation.VOR2.Available", "bool", Read, FlagActive),
	}
	return rows
}

func trimIndicatorRows() []row {
	rows := []row{
		scalar("Trim.PitchIndicator", "ratio", Read, FlagValue),
		scalar("Trim.RollIndicator", "ratio", Read, FlagValue),
		scalar("Trim.YawIndicator", "ratio", Read, FlagValue),
		scalar("Trim.ElevatorTrimWheel", "ratio", ReadWrite, FlagValue),
		scalar("Trim.AutoTrimActive", "bool", Read, FlagActive),
	}
	return rows
}

func autopilotVNAVRows() []row {
	rows := []row{
		scalar("Autopilot.VNAVEngaged", "bool", ReadWrite, FlagToggle),
		scalar("Autopilot.VNAVTargetAltitude", "meters", ReadWrite, FlagValue),
		scalar("Autopilot.VNAVPathDeviation", "meters", Read, FlagValue),
		scalar("Autopilot.LNAVEngaged", "bool", ReadWrite, FlagToggle),
		scalar("Autopilot.ApproachMode", "bool", ReadWrite, FlagToggle),
		scalar("Autopilot.GoAroundMode", "bool", ReadWrite, FlagToggle),
		scalar("Autopilot.AltitudeHoldMode", "bool", Read, FlagActive),
		scalar("Autopilot.SelectedFlightLevelChange", "bool", ReadWrite, FlagToggle),
		scalar("Autopilot.BankLimit", "radians", ReadWrite, FlagValue),
		scalar("Autopilot.SelectedSpeedMach", "mach", ReadWrite, FlagValue),
	}
	return rows
}

func weatherRows() []row {
	rows := []row{
		scalar("Weather.OutsideAirTemperature", "celsius", Read, FlagValue),
		scalar("Weather.BarometricPressure", "hpa", Read, FlagValue),
		scalar("Weather.Visibility", "meters", Read, FlagValue),
		scalar("Weather.WindDirection", "radians", Read, FlagValue),
		scalar("Weather.WindSpeed", "meters_per_second", Read, FlagValue),
		scalar("Weather.Turbulence", "ratio", Read, FlagValue),
		scalar("Weather.Precipitation", "ratio", Read, FlagValue),
		scalar("Weather.CloudBase", "meters", Read, FlagValue),
	}
	return rows
}

func forceFeedbackRows() []row {
	rows := []row{
		scalar("ForceFeedback.StickShaker", "bool", Read, FlagActive),
		scalar("ForceFeedback.StickPusher", "bool", Read, FlagActive),
		scalar("ForceFeedback.ControlForceX", "ratio", Read, FlagValue),
		scalar("ForceFeedback.ControlForceY", "ratio", Read, FlagValue),
		scalar("ForceFeedback.RudderPedalForce", "ratio", Read, FlagValue),
	}
	return rows
}

func hydraulicsRows() []row {
	rows := []row{
		scalar("Hydraulics.Pressure.1", "psi", Read, FlagValue),
		scalar("Hydraulics.Pressure.2", "psi", Read, FlagValue),
		scalar("Hydraulics.Pressure.3", "psi", Read, FlagValue),
		scalar("Hydraulics.PumpSwitch.1", "bool", ReadWrite, FlagToggle),
		scalar("Hydraulics.PumpSwitch.2", "bool", ReadWrite, FlagToggle),
		scalar("Hydraulics.Quantity.1", "ratio", Read, FlagValue),
		scalar("Hydraulics.Quantity.2", "ratio", Read, FlagValue),
	}
	return rows
}

func pressurizationRows() []row {
	rows := []row{
		scalar("Pressurization.CabinAltitude", "meters", Read, FlagValue),
		scalar("Pressurization.CabinVerticalSpeed", "meters_per_second", Read, FlagValue),
		scalar("Pressurization.DifferentialPressure", "psi", Read, FlagValue),
		scalar("Pressurization.OutflowValvePosition", "ratio", Read, FlagValue),
		scalar("Pressurization.Mode", "enum", ReadWrite, FlagValue),
		scalar("Pressurization.LandingElevation", "meters", ReadWrite, FlagValue),
	}
	return rows
}

func miscRows() []row {
	rows := []row{
		scalar("Misc.ElapsedFlightTime", "seconds", Read, FlagValue),
		scalar("Misc.ChocksInPlace", "bool", ReadWrite, FlagToggle),
		scalar("Misc.GroundPowerConnected", "bool", Read, FlagActive),
		scalar("Misc.PushbackActive", "bool", ReadWrite, FlagToggle),
		vec2("Misc.PushbackVelocity", "meters_per_second", Write, FlagMove),
		scalar("Misc.WindshieldWiper", "ratio", ReadWrite, FlagValue),
		scalar("Misc.OxygenMaskDeployed", "bool", Read, FlagActive),
		scalar("Misc.CabinAltitudeWarning", "bool", Read, FlagActive),
	}
	return rows
}
