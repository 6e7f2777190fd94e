package apu

// adpcmStepTable is the standard 89-entry IMA-ADPCM step-size table;
// samples decode through it 4 bits (one nibble) at a time.
var adpcmStepTable = [89]int32{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17,
	19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118,
	130, 143, 157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658, 724, 796,
	876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066,
	2272, 2499, 2749, 3024, 3327, 3660, 4026, 4428, 4871, 5358,
	5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

// adpcmIndexTable adjusts the step-table index per nibble, the
// conventional IMA-ADPCM index delta table.
var adpcmIndexTable = [16]int{
	-1, -1, -1, -1, 2, 4, 6, 8,
	-1, -1, -1, -1, 2, 4, 6, 8,
}

// decodeADPCMNibble reads the current stream position's nibble (skipping
// the 4-byte header Reset already consumed), decodes one PCM16 sample
// through the step table, and advances the nibble cursor.
func (c *Channel) decodeADPCMNibble() int16 {
	byteOff := 4 + int(c.samplePos)/2
	if byteOff >= len(c.Data) {
		return int16(c.adpcmPredictor)
	}
	b := c.Data[byteOff]
	var nibble uint8
	if !c.adpcmHighNibble {
		nibble = b & 0xF
	} else {
		nibble = b >> 4
	}
	c.adpcmHighNibble = !c.adpcmHighNibble

	step := adpcmStepTable[c.adpcmStepIndex]
	diff := step >> 3
	if nibble&1 != 0 {
		diff += step >> 2
	}
	if nibble&2 != 0 {
		diff += step >> 1
	}
	if nibble&4 != 0 {
		diff += step
	}
	if nibble&8 != 0 {
		c.adpcmPredictor -= diff
	} else {
		c.adpcmPredictor += diff
	}
	if c.adpcmPredictor > 32767 {
		c.adpcmPredictor = 32767
	} else if c.adpcmPredictor < -32768 {
		c.adpcmPredictor = -32768
	}

	c.adpcmStepIndex += adpcmIndexTable[nibble]
	if c.adpcmStepIndex < 0 {
		c.adpcmStepIndex = 0
	} else if c.adpcmStepIndex > len(adpcmStepTable)-1 {
		c.adpcmStepIndex = len(adpcmStepTable) - 1
	}

	return int16(c.adpcmPredictor)
}
