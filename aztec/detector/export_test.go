package detector

var ReadOrientation = readOrientation
